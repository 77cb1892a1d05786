package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/reflection"
)

type dbReflection struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	DevotionalID int       `db:"devotional_id"`
	Body         string    `db:"body"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toDBReflection(ref reflection.Reflection) dbReflection {
	return dbReflection{
		ID:           ref.ID,
		UserID:       ref.UserID,
		DevotionalID: ref.DevotionalID,
		Body:         ref.Body,
		CreatedAt:    ref.CreatedAt.UTC(),
		UpdatedAt:    ref.UpdatedAt.UTC(),
	}
}

func fromDBReflection(r dbReflection) reflection.Reflection {
	return reflection.Reflection(r)
}

type reflectionRepository struct {
	db *sqlx.DB
}

var _ reflection.Repository = (*reflectionRepository)(nil) // interface compliance check

func NewReflectionRepository(db *sqlx.DB) *reflectionRepository {
	return &reflectionRepository{db: db}
}

func (repo reflectionRepository) CreateReflection(ctx context.Context, ref reflection.Reflection) (reflection.Reflection, error) {
	query := `
		INSERT INTO reflection (id, user_id, devotional_id, body, created_at, updated_at)
		VALUES (:id, :user_id, :devotional_id, :body, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toDBReflection(ref)); err != nil {
		return reflection.Reflection{}, errors.Wrap(err, "creating reflection")
	}
	return ref, nil
}

func (repo reflectionRepository) GetReflectionByID(ctx context.Context, id string) (reflection.Reflection, error) {
	var r dbReflection
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM reflection WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return reflection.Reflection{}, reflection.ErrNotFound
		}
		return reflection.Reflection{}, errors.Wrap(err, "getting reflection")
	}
	return fromDBReflection(r), nil
}

func (repo reflectionRepository) QueryReflectionsByUserID(ctx context.Context, userID string) ([]reflection.Reflection, error) {
	var dbRefs []dbReflection
	query := `SELECT * FROM reflection WHERE user_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &dbRefs, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying reflections")
	}
	refs := make([]reflection.Reflection, 0, len(dbRefs))
	for _, r := range dbRefs {
		refs = append(refs, fromDBReflection(r))
	}
	return refs, nil
}

func (repo reflectionRepository) UpdateReflection(ctx context.Context, ref reflection.Reflection) (reflection.Reflection, error) {
	r := toDBReflection(ref)
	query := `UPDATE reflection SET body = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, r.Body, r.UpdatedAt, r.ID)
	if err != nil {
		return reflection.Reflection{}, errors.Wrap(err, "updating reflection")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reflection.Reflection{}, reflection.ErrNotFound
	}
	return ref, nil
}

func (repo reflectionRepository) DeleteReflectionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM reflection WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting reflections")
	}
	return nil
}
