package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/imani/core/reflection"
)

type reflectionRepository struct {
	db *reflectionTable
}

var _ reflection.Repository = (*reflectionRepository)(nil)

func NewReflectionRepository(db *DB) *reflectionRepository {
	return &reflectionRepository{db: db.reflections}
}

func (repo *reflectionRepository) CreateReflection(_ context.Context, ref reflection.Reflection) (reflection.Reflection, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table[ref.ID] = &ref
	return ref, nil
}

func (repo *reflectionRepository) GetReflectionByID(_ context.Context, id string) (reflection.Reflection, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ref, ok := repo.db.table[id]; ok {
		return *ref, nil
	}
	return reflection.Reflection{}, reflection.ErrNotFound
}

func (repo *reflectionRepository) QueryReflectionsByUserID(_ context.Context, userID string) ([]reflection.Reflection, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	refs := make([]reflection.Reflection, 0)
	for _, ref := range repo.db.table {
		if ref.UserID == userID {
			refs = append(refs, *ref)
		}
	}
	// newest first
	sort.Slice(refs, func(i, j int) bool { return refs[i].CreatedAt.After(refs[j].CreatedAt) })
	return refs, nil
}

func (repo *reflectionRepository) UpdateReflection(_ context.Context, ref reflection.Reflection) (reflection.Reflection, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[ref.ID]
	if !ok {
		return reflection.Reflection{}, reflection.ErrNotFound
	}
	orig.Body = ref.Body
	orig.UpdatedAt = ref.UpdatedAt
	return *orig, nil
}

func (repo *reflectionRepository) DeleteReflectionsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
