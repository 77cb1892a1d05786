package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/program"
)

type dbProgress struct {
	UserID         string        `db:"user_id"`
	CurrentWeek    int           `db:"current_week"`
	CurrentDay     int           `db:"current_day"`
	WeekCompleted  pq.Int64Array `db:"week_completed"`
	CompletedIDs   pq.Int64Array `db:"completed_ids"`
	CohortNumber   int           `db:"cohort_number"`
	CohortName     string        `db:"cohort_name"`
	StartDate      time.Time     `db:"start_date"`
	LastAccessedAt time.Time     `db:"last_accessed_at"`
}

func toDBProgress(prog program.Progress) dbProgress {
	weekCompleted := make(pq.Int64Array, program.Weeks)
	for i, n := range prog.WeekCompleted {
		weekCompleted[i] = int64(n)
	}
	completedIDs := make(pq.Int64Array, 0, len(prog.CompletedIDs))
	for _, id := range prog.CompletedIDs {
		completedIDs = append(completedIDs, int64(id))
	}
	return dbProgress{
		UserID:         prog.UserID,
		CurrentWeek:    prog.Current.Week,
		CurrentDay:     prog.Current.Day,
		WeekCompleted:  weekCompleted,
		CompletedIDs:   completedIDs,
		CohortNumber:   prog.CohortNumber,
		CohortName:     prog.CohortName,
		StartDate:      prog.StartDate.UTC(),
		LastAccessedAt: prog.LastAccessedAt.UTC(),
	}
}

func fromDBProgress(p dbProgress) program.Progress {
	prog := program.Progress{
		UserID:         p.UserID,
		Current:        program.Position{Week: p.CurrentWeek, Day: p.CurrentDay},
		CompletedIDs:   make([]int, 0, len(p.CompletedIDs)),
		CohortNumber:   p.CohortNumber,
		CohortName:     p.CohortName,
		StartDate:      p.StartDate,
		LastAccessedAt: p.LastAccessedAt,
	}
	for i, n := range p.WeekCompleted {
		if i < program.Weeks {
			prog.WeekCompleted[i] = int(n)
		}
	}
	for _, id := range p.CompletedIDs {
		prog.CompletedIDs = append(prog.CompletedIDs, int(id))
	}
	return prog
}

type progressRepository struct {
	db *sqlx.DB
}

var _ program.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) GetProgressByUserID(ctx context.Context, userID string) (program.Progress, error) {
	var p dbProgress
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM progress WHERE user_id = $1`, userID); err != nil {
		if err == sql.ErrNoRows {
			return program.Progress{}, program.ErrNotFound
		}
		return program.Progress{}, errors.Wrap(err, "getting progress")
	}
	return fromDBProgress(p), nil
}

func (repo progressRepository) CreateProgress(ctx context.Context, prog program.Progress) (program.Progress, error) {
	query := `
		INSERT INTO progress (user_id, current_week, current_day, week_completed, completed_ids,
		                      cohort_number, cohort_name, start_date, last_accessed_at)
		VALUES (:user_id, :current_week, :current_day, :week_completed, :completed_ids,
		        :cohort_number, :cohort_name, :start_date, :last_accessed_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toDBProgress(prog)); err != nil {
		return program.Progress{}, errors.Wrap(err, "creating progress")
	}
	return prog, nil
}

// UpdateProgress is a single conditional write: the row is only touched while
// it still points at `expected`. Zero rows affected means either the record
// is gone or a concurrent completion moved it first.
func (repo progressRepository) UpdateProgress(ctx context.Context, prog program.Progress, expected program.Position) (program.Progress, error) {
	p := toDBProgress(prog)
	query := `
		UPDATE progress
		SET current_week     = $1,
		    current_day      = $2,
		    week_completed   = $3,
		    completed_ids    = $4,
		    last_accessed_at = $5
		WHERE user_id = $6 AND current_week = $7 AND current_day = $8`
	res, err := repo.db.ExecContext(ctx, query,
		p.CurrentWeek, p.CurrentDay, p.WeekCompleted, p.CompletedIDs, p.LastAccessedAt,
		p.UserID, expected.Week, expected.Day,
	)
	if err != nil {
		return program.Progress{}, errors.Wrap(err, "updating progress")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := repo.GetProgressByUserID(ctx, prog.UserID); gerr != nil {
			return program.Progress{}, gerr
		}
		return program.Progress{}, program.ErrProgressModified
	}
	return prog, nil
}

func (repo progressRepository) SaveProgress(ctx context.Context, prog program.Progress) (program.Progress, error) {
	p := toDBProgress(prog)
	query := `
		UPDATE progress
		SET current_week     = $1,
		    current_day      = $2,
		    week_completed   = $3,
		    completed_ids    = $4,
		    cohort_number    = $5,
		    cohort_name      = $6,
		    start_date       = $7,
		    last_accessed_at = $8
		WHERE user_id = $9`
	res, err := repo.db.ExecContext(ctx, query,
		p.CurrentWeek, p.CurrentDay, p.WeekCompleted, p.CompletedIDs,
		p.CohortNumber, p.CohortName, p.StartDate, p.LastAccessedAt,
		p.UserID,
	)
	if err != nil {
		return program.Progress{}, errors.Wrap(err, "saving progress")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return program.Progress{}, program.ErrNotFound
	}
	return prog, nil
}
