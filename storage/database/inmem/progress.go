package inmemdb

import (
	"context"

	"github.com/trezcool/imani/core/program"
)

type progressRepository struct {
	db *progressTable
}

var _ program.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress}
}

func copyProgress(prog program.Progress) program.Progress {
	cp := prog
	cp.CompletedIDs = append([]int(nil), prog.CompletedIDs...)
	return cp
}

func (repo *progressRepository) GetProgressByUserID(_ context.Context, userID string) (program.Progress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if prog, ok := repo.db.table[userID]; ok {
		return copyProgress(*prog), nil
	}
	return program.Progress{}, program.ErrNotFound
}

func (repo *progressRepository) CreateProgress(_ context.Context, prog program.Progress) (program.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cp := copyProgress(prog)
	repo.db.table[prog.UserID] = &cp
	return copyProgress(cp), nil
}

// UpdateProgress writes prog only if the stored record still points at
// `expected`; mirrors the conditional UPDATE the SQL repository does.
func (repo *progressRepository) UpdateProgress(_ context.Context, prog program.Progress, expected program.Position) (program.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[prog.UserID]
	if !ok {
		return program.Progress{}, program.ErrNotFound
	}
	if orig.Current != expected {
		return program.Progress{}, program.ErrProgressModified
	}
	cp := copyProgress(prog)
	repo.db.table[prog.UserID] = &cp
	return copyProgress(cp), nil
}

func (repo *progressRepository) SaveProgress(_ context.Context, prog program.Progress) (program.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[prog.UserID]; !ok {
		return program.Progress{}, program.ErrNotFound
	}
	cp := copyProgress(prog)
	repo.db.table[prog.UserID] = &cp
	return copyProgress(cp), nil
}
