package devotional

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/program"
)

var (
	// errors
	ErrNotFound = errors.New("devotional not found")
	ErrExists   = errors.New("a devotional already exists at this position")
)

type (
	Repository interface {
		CreateDevotional(ctx context.Context, dev Devotional) (Devotional, error)
		QueryAllDevotionals(ctx context.Context) ([]Devotional, error) // ordered by id
		GetDevotionalByID(ctx context.Context, id int) (Devotional, error)
		GetDevotionalByPosition(ctx context.Context, week, day int) (Devotional, error)
		UpdateDevotional(ctx context.Context, dev Devotional) (Devotional, error)
		DeleteDevotionalsByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Service doubles as the program's read-only catalog.
var _ program.Catalog = (*Service)(nil)

func (svc *Service) Create(ctx context.Context, nd NewDevotional) (Devotional, error) {
	if _, err := svc.repo.GetDevotionalByPosition(ctx, nd.Week, nd.Day); err == nil {
		return Devotional{}, ErrExists
	} else if errors.Cause(err) != ErrNotFound {
		return Devotional{}, errors.Wrap(err, "checking devotional position")
	}

	now := time.Now().UTC()
	dev := Devotional{
		ID:        program.Position{Week: nd.Week, Day: nd.Day}.DevotionalID(),
		Week:      nd.Week,
		Day:       nd.Day,
		Title:     nd.Title,
		Passage:   nd.Passage,
		Body:      nd.Body,
		VideoURL:  nd.VideoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDevotional(ctx, dev)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Devotional, error) {
	return svc.repo.QueryAllDevotionals(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Devotional, error) {
	if _, err := program.PositionFromID(id); err != nil {
		return Devotional{}, ErrNotFound
	}
	return svc.repo.GetDevotionalByID(ctx, id)
}

func (svc *Service) GetByPosition(ctx context.Context, week, day int) (Devotional, error) {
	if !program.IsValidPosition(week, day) {
		return Devotional{}, ErrNotFound
	}
	return svc.repo.GetDevotionalByPosition(ctx, week, day)
}

func (svc *Service) Update(ctx context.Context, id int, ud UpdateDevotional) (Devotional, error) {
	dev, err := svc.GetByID(ctx, id)
	if err != nil {
		return Devotional{}, err
	}

	if ud.Title != "" {
		dev.Title = ud.Title
	}
	if ud.Passage != "" {
		dev.Passage = ud.Passage
	}
	if ud.Body != "" {
		dev.Body = ud.Body
	}
	if ud.VideoURL != "" {
		dev.VideoURL = ud.VideoURL
	}
	dev.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateDevotional(ctx, dev)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteDevotionalsByID(ctx, ids...)
}

// QueryAccessible returns the catalog filtered down to what a user at
// `current` may see, in program order.
func (svc *Service) QueryAccessible(ctx context.Context, current *program.Position) ([]Devotional, error) {
	items, err := svc.repo.QueryAllDevotionals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying devotionals")
	}
	return FilterAccessible(items, current), nil
}

// DevotionalExists implements program.Catalog.
func (svc *Service) DevotionalExists(ctx context.Context, week, day int) (bool, error) {
	_, err := svc.GetByPosition(ctx, week, day)
	if err == nil {
		return true, nil
	}
	if errors.Cause(err) == ErrNotFound {
		return false, nil
	}
	return false, err
}

// DevotionalTitle implements program.Catalog. A missing devotional yields an
// empty title rather than an error; the summary stays renderable while the
// catalog is being seeded.
func (svc *Service) DevotionalTitle(ctx context.Context, week, day int) (string, error) {
	dev, err := svc.GetByPosition(ctx, week, day)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return dev.Title, nil
}
