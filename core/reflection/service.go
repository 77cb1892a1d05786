package reflection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/program"
)

var (
	// errors
	ErrNotFound = errors.New("reflection not found")

	// ErrNotAccessible rejects a reflection on a devotional the user has not
	// reached yet.
	ErrNotAccessible = errors.New("devotional not yet accessible")
)

type (
	Repository interface {
		CreateReflection(ctx context.Context, ref Reflection) (Reflection, error)
		GetReflectionByID(ctx context.Context, id string) (Reflection, error)
		QueryReflectionsByUserID(ctx context.Context, userID string) ([]Reflection, error) // newest first
		UpdateReflection(ctx context.Context, ref Reflection) (Reflection, error)
		DeleteReflectionsByID(ctx context.Context, ids ...string) error
	}

	// ProgressLookup is the slice of the program service reflections need.
	ProgressLookup interface {
		GetOrCreate(ctx context.Context, userID string) (program.Progress, error)
	}

	Service struct {
		repo     Repository
		progress ProgressLookup
	}
)

func NewService(repo Repository, progress ProgressLookup) *Service {
	return &Service{
		repo:     repo,
		progress: progress,
	}
}

// Create stores a reflection for the devotional at (nr.Week, nr.Day),
// provided that devotional is accessible at the user's current position.
func (svc *Service) Create(ctx context.Context, userID string, nr NewReflection) (Reflection, error) {
	prog, err := svc.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return Reflection{}, err
	}
	pos := program.Position{Week: nr.Week, Day: nr.Day}
	if !program.Accessible(pos, prog.Current) {
		return Reflection{}, ErrNotAccessible
	}

	now := time.Now().UTC()
	ref := Reflection{
		ID:           uuid.New().String(),
		UserID:       userID,
		DevotionalID: pos.DevotionalID(),
		Body:         nr.Body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateReflection(ctx, ref)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Reflection, error) {
	return svc.repo.GetReflectionByID(ctx, id)
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Reflection, error) {
	return svc.repo.QueryReflectionsByUserID(ctx, userID)
}

// Update replaces the reflection body; only the owner may update.
func (svc *Service) Update(ctx context.Context, id, userID string, ur UpdateReflection) (Reflection, error) {
	ref, err := svc.repo.GetReflectionByID(ctx, id)
	if err != nil {
		return Reflection{}, err
	}
	if ref.UserID != userID {
		return Reflection{}, ErrNotFound
	}
	ref.Body = ur.Body
	ref.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateReflection(ctx, ref)
}

// Delete removes the reflection; only the owner may delete.
func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	ref, err := svc.repo.GetReflectionByID(ctx, id)
	if err != nil {
		return err
	}
	if ref.UserID != userID {
		return ErrNotFound
	}
	return svc.repo.DeleteReflectionsByID(ctx, ref.ID)
}
