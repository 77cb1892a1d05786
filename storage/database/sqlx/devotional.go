package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/imani/core/devotional"
)

type dbDevotional struct {
	ID        int         `db:"id"`
	Week      int         `db:"week"`
	Day       int         `db:"day"`
	Title     string      `db:"title"`
	Passage   null.String `db:"passage"`
	Body      string      `db:"body"`
	VideoURL  null.String `db:"video_url"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func toDBDevotional(dev devotional.Devotional) dbDevotional {
	return dbDevotional{
		ID:        dev.ID,
		Week:      dev.Week,
		Day:       dev.Day,
		Title:     dev.Title,
		Passage:   null.NewString(dev.Passage, dev.Passage != ""),
		Body:      dev.Body,
		VideoURL:  null.NewString(dev.VideoURL, dev.VideoURL != ""),
		CreatedAt: dev.CreatedAt.UTC(),
		UpdatedAt: dev.UpdatedAt.UTC(),
	}
}

func fromDBDevotional(d dbDevotional) devotional.Devotional {
	return devotional.Devotional{
		ID:        d.ID,
		Week:      d.Week,
		Day:       d.Day,
		Title:     d.Title,
		Passage:   d.Passage.String,
		Body:      d.Body,
		VideoURL:  d.VideoURL.String,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type devotionalRepository struct {
	db *sqlx.DB
}

var _ devotional.Repository = (*devotionalRepository)(nil) // interface compliance check

func NewDevotionalRepository(db *sqlx.DB) *devotionalRepository {
	return &devotionalRepository{db: db}
}

func (repo devotionalRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return devotional.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo devotionalRepository) CreateDevotional(ctx context.Context, dev devotional.Devotional) (devotional.Devotional, error) {
	query := `
		INSERT INTO devotional (id, week, day, title, passage, body, video_url, created_at, updated_at)
		VALUES (:id, :week, :day, :title, :passage, :body, :video_url, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toDBDevotional(dev)); err != nil {
		return devotional.Devotional{}, errors.Wrap(err, "creating devotional")
	}
	return dev, nil
}

func (repo devotionalRepository) QueryAllDevotionals(ctx context.Context) ([]devotional.Devotional, error) {
	var dbDevs []dbDevotional
	if err := repo.db.SelectContext(ctx, &dbDevs, `SELECT * FROM devotional ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying devotionals")
	}
	devs := make([]devotional.Devotional, 0, len(dbDevs))
	for _, d := range dbDevs {
		devs = append(devs, fromDBDevotional(d))
	}
	return devs, nil
}

func (repo devotionalRepository) GetDevotionalByID(ctx context.Context, id int) (devotional.Devotional, error) {
	var d dbDevotional
	if err := repo.db.GetContext(ctx, &d, `SELECT * FROM devotional WHERE id = $1`, id); err != nil {
		return devotional.Devotional{}, repo.trapNoRowsErr(err, "getting devotional by id")
	}
	return fromDBDevotional(d), nil
}

func (repo devotionalRepository) GetDevotionalByPosition(ctx context.Context, week, day int) (devotional.Devotional, error) {
	var d dbDevotional
	query := `SELECT * FROM devotional WHERE week = $1 AND day = $2`
	if err := repo.db.GetContext(ctx, &d, query, week, day); err != nil {
		return devotional.Devotional{}, repo.trapNoRowsErr(err, "getting devotional by position")
	}
	return fromDBDevotional(d), nil
}

func (repo devotionalRepository) UpdateDevotional(ctx context.Context, dev devotional.Devotional) (devotional.Devotional, error) {
	d := toDBDevotional(dev)
	query := `
		UPDATE devotional
		SET title = $1, passage = $2, body = $3, video_url = $4, updated_at = $5
		WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query, d.Title, d.Passage, d.Body, d.VideoURL, d.UpdatedAt, d.ID)
	if err != nil {
		return devotional.Devotional{}, errors.Wrap(err, "updating devotional")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return devotional.Devotional{}, devotional.ErrNotFound
	}
	return dev, nil
}

func (repo devotionalRepository) DeleteDevotionalsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM devotional WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting devotionals")
	}
	return nil
}
