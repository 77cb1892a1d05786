package reflection_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/imani/core/program"
	"github.com/trezcool/imani/core/reflection"
	"github.com/trezcool/imani/storage/database/inmem"
)

// progressStub pins every user at a fixed position.
type progressStub struct {
	current program.Position
}

func (s progressStub) GetOrCreate(_ context.Context, userID string) (program.Progress, error) {
	prog := program.NewProgress(userID, program.DefaultCohort)
	prog.Current = s.current
	return prog, nil
}

func setup(t *testing.T, current program.Position) *reflection.Service {
	t.Helper()
	repo := inmemdb.NewReflectionRepository(inmemdb.Open())
	return reflection.NewService(repo, progressStub{current: current})
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, program.Position{Week: 2, Day: 3})

	ref, err := svc.Create(ctx, "usr1", reflection.NewReflection{Week: 2, Day: 3, Body: "He is faithful."})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if ref.DevotionalID != 10 {
		t.Errorf("DevotionalID = %d; want 10", ref.DevotionalID)
	}
	if ref.ID == "" || ref.UserID != "usr1" {
		t.Errorf("ref = %+v", ref)
	}

	// reflecting on an earlier day is fine
	if _, err = svc.Create(ctx, "usr1", reflection.NewReflection{Week: 1, Day: 5, Body: "Looking back."}); err != nil {
		t.Errorf("Create() on past devotional failed: %v", err)
	}

	// reflecting ahead of the current position is not
	_, err = svc.Create(ctx, "usr1", reflection.NewReflection{Week: 2, Day: 4, Body: "Too eager."})
	if errors.Cause(err) != reflection.ErrNotAccessible {
		t.Errorf("Create() error = %v; want ErrNotAccessible", err)
	}
}

func TestServiceUpdateDelete_ownerOnly(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, program.Position{Week: 1, Day: 1})

	ref, err := svc.Create(ctx, "usr1", reflection.NewReflection{Week: 1, Day: 1, Body: "First."})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	updated, err := svc.Update(ctx, ref.ID, "usr1", reflection.UpdateReflection{Body: "Second thoughts."})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Body != "Second thoughts." {
		t.Errorf("Body = %q", updated.Body)
	}

	// another user never sees it
	if _, err = svc.Update(ctx, ref.ID, "usr2", reflection.UpdateReflection{Body: "Hijack."}); errors.Cause(err) != reflection.ErrNotFound {
		t.Errorf("Update() by non-owner error = %v; want ErrNotFound", err)
	}
	if err = svc.Delete(ctx, ref.ID, "usr2"); errors.Cause(err) != reflection.ErrNotFound {
		t.Errorf("Delete() by non-owner error = %v; want ErrNotFound", err)
	}

	if err = svc.Delete(ctx, ref.ID, "usr1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.GetByID(ctx, ref.ID); errors.Cause(err) != reflection.ErrNotFound {
		t.Errorf("GetByID() after delete error = %v; want ErrNotFound", err)
	}
}

func TestServiceQueryByUser(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, program.Position{Week: 5, Day: 7})

	for _, body := range []string{"one", "two", "three"} {
		if _, err := svc.Create(ctx, "usr1", reflection.NewReflection{Week: 1, Day: 1, Body: body}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}
	if _, err := svc.Create(ctx, "usr2", reflection.NewReflection{Week: 1, Day: 1, Body: "other"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	refs, err := svc.QueryByUser(ctx, "usr1")
	if err != nil {
		t.Fatalf("QueryByUser() failed: %v", err)
	}
	if len(refs) != 3 {
		t.Errorf("QueryByUser() returned %d; want 3", len(refs))
	}
	for _, ref := range refs {
		if ref.UserID != "usr1" {
			t.Errorf("leaked reflection of %q", ref.UserID)
		}
	}
}
