package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/imani/core/devotional"
)

type devotionalRepository struct {
	db *devotionalTable
}

var _ devotional.Repository = (*devotionalRepository)(nil)

func NewDevotionalRepository(db *DB) *devotionalRepository {
	return &devotionalRepository{db: db.devotionals}
}

func (repo *devotionalRepository) CreateDevotional(_ context.Context, dev devotional.Devotional) (devotional.Devotional, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table[dev.ID] = &dev
	return dev, nil
}

func (repo *devotionalRepository) QueryAllDevotionals(_ context.Context) ([]devotional.Devotional, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	devs := make([]devotional.Devotional, 0, len(repo.db.table))
	for _, d := range repo.db.table {
		devs = append(devs, *d)
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].ID < devs[j].ID })
	return devs, nil
}

func (repo *devotionalRepository) GetDevotionalByID(_ context.Context, id int) (devotional.Devotional, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if dev, ok := repo.db.table[id]; ok {
		return *dev, nil
	}
	return devotional.Devotional{}, devotional.ErrNotFound
}

func (repo *devotionalRepository) GetDevotionalByPosition(_ context.Context, week, day int) (devotional.Devotional, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, dev := range repo.db.table {
		if dev.Week == week && dev.Day == day {
			return *dev, nil
		}
	}
	return devotional.Devotional{}, devotional.ErrNotFound
}

func (repo *devotionalRepository) UpdateDevotional(_ context.Context, dev devotional.Devotional) (devotional.Devotional, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[dev.ID]
	if !ok {
		return devotional.Devotional{}, devotional.ErrNotFound
	}
	orig.Title = dev.Title
	orig.Passage = dev.Passage
	orig.Body = dev.Body
	orig.VideoURL = dev.VideoURL
	orig.UpdatedAt = dev.UpdatedAt
	return *orig, nil
}

func (repo *devotionalRepository) DeleteDevotionalsByID(_ context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
