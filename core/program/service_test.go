package program_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/imani/core"
	"github.com/trezcool/imani/core/program"
	"github.com/trezcool/imani/core/user"
	"github.com/trezcool/imani/storage/database/inmem"
)

// fakeCatalog backs the service with a fully seeded curriculum, minus any
// explicitly missing positions.
type fakeCatalog struct {
	missing map[program.Position]bool
}

func (c fakeCatalog) DevotionalExists(_ context.Context, week, day int) (bool, error) {
	if !program.IsValidPosition(week, day) {
		return false, nil
	}
	return !c.missing[program.Position{Week: week, Day: day}], nil
}

func (c fakeCatalog) DevotionalTitle(_ context.Context, week, day int) (string, error) {
	ok, _ := c.DevotionalExists(nil, week, day)
	if !ok {
		return "", nil
	}
	return "Abiding Daily", nil
}

type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func setup(t *testing.T, catalog program.Catalog) (*program.Service, program.Repository, *mailRecorder) {
	t.Helper()
	repo := inmemdb.NewProgressRepository(inmemdb.Open())
	mailSvc := &mailRecorder{}
	conf := &core.Config{AppName: "Imani"}
	return program.NewService(repo, catalog, mailSvc, conf), repo, mailSvc
}

func TestServiceGetOrCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, fakeCatalog{})

	prog, err := svc.GetOrCreate(ctx, "usr1")
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if prog.Current != program.StartPosition {
		t.Errorf("Current = %v; want %v", prog.Current, program.StartPosition)
	}
	if prog.CohortNumber != program.DefaultCohort || prog.CohortName != "I" {
		t.Errorf("cohort = %d %q; want %d I", prog.CohortNumber, prog.CohortName, program.DefaultCohort)
	}

	// second call returns the same record, no duplicate creation
	again, err := svc.GetOrCreate(ctx, "usr1")
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if again.StartDate != prog.StartDate {
		t.Errorf("StartDate changed on second call: %v != %v", again.StartDate, prog.StartDate)
	}
}

func TestServiceComplete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, fakeCatalog{})
	usr := user.User{ID: "usr1", Name: "Amina", Email: "amina@test.cd"}

	prog, next, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: 1, Day: 1})
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if want := (program.Position{Week: 1, Day: 2}); next != want {
		t.Errorf("next = %v; want %v", next, want)
	}
	if prog.Current != next {
		t.Errorf("Current = %v; want %v", prog.Current, next)
	}
	if !prog.HasCompleted(1) {
		t.Error("devotional 1 not marked complete")
	}
	if prog.WeekCompleted[0] != 1 {
		t.Errorf("WeekCompleted[0] = %d; want 1", prog.WeekCompleted[0])
	}
}

func TestServiceComplete_outOfSequence(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t, fakeCatalog{})
	usr := user.User{ID: "usr1"}

	tests := []struct {
		name string
		req  program.CompleteDevotional
	}{
		{"ahead same week", program.CompleteDevotional{Week: 1, Day: 2}},
		{"ahead later week", program.CompleteDevotional{Week: 3, Day: 5}},
		{"final day", program.CompleteDevotional{Week: 5, Day: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Complete(ctx, usr, tt.req)
			var seqErr *program.OutOfSequenceError
			if !errors.As(err, &seqErr) {
				t.Fatalf("Complete() error = %v; want *OutOfSequenceError", err)
			}
			if seqErr.Current != program.StartPosition {
				t.Errorf("err.Current = %v; want %v", seqErr.Current, program.StartPosition)
			}
		})
	}

	// the record was never advanced
	prog, err := repo.GetProgressByUserID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetProgressByUserID() failed: %v", err)
	}
	if prog.Current != program.StartPosition || prog.TotalCompleted() != 0 {
		t.Errorf("record moved: Current = %v, TotalCompleted = %d", prog.Current, prog.TotalCompleted())
	}
}

func TestServiceComplete_repeatRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, fakeCatalog{})
	usr := user.User{ID: "usr1"}

	if _, _, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: 1, Day: 1}); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}

	// re-completing a finished day is out of sequence, not idempotent success
	_, _, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: 1, Day: 1})
	var seqErr *program.OutOfSequenceError
	if !errors.As(err, &seqErr) {
		t.Fatalf("Complete() error = %v; want *OutOfSequenceError", err)
	}
	if want := (program.Position{Week: 1, Day: 2}); seqErr.Current != want {
		t.Errorf("err.Current = %v; want %v", seqErr.Current, want)
	}
}

func TestServiceComplete_invalidDevotional(t *testing.T) {
	ctx := context.Background()
	missing := fakeCatalog{missing: map[program.Position]bool{{Week: 1, Day: 1}: true}}
	svc, _, _ := setup(t, missing)
	usr := user.User{ID: "usr1"}

	_, _, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: 1, Day: 1})
	if errors.Cause(err) != program.ErrInvalidDevotional {
		t.Errorf("Complete() error = %v; want ErrInvalidDevotional", err)
	}
}

func TestServiceComplete_wholeProgram(t *testing.T) {
	ctx := context.Background()
	svc, _, mailSvc := setup(t, fakeCatalog{})
	usr := user.User{ID: "usr1", Name: "Amina", Email: "amina@test.cd"}

	pos := program.StartPosition
	for i := 0; i < program.TotalDevotionals; i++ {
		prog, next, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: pos.Week, Day: pos.Day})
		if err != nil {
			t.Fatalf("Complete(%v) failed: %v", pos, err)
		}
		if i < program.TotalDevotionals-1 && prog.Completed() {
			t.Fatalf("Completed() = true after %d completions", i+1)
		}
		pos = next
	}
	if !pos.IsFinal() {
		t.Errorf("final position = %v; want %v", pos, program.FinalPosition)
	}

	prog, err := svc.GetOrCreate(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if !prog.Completed() || prog.TotalCompleted() != program.TotalDevotionals {
		t.Errorf("Completed = %v, TotalCompleted = %d; want true, %d",
			prog.Completed(), prog.TotalCompleted(), program.TotalDevotionals)
	}

	// finishing sends the congrats email, once
	if len(mailSvc.sent) != 1 {
		t.Fatalf("sent %d emails; want 1", len(mailSvc.sent))
	}
	if mailSvc.sent[0].TemplateName != "program-complete" {
		t.Errorf("email template = %q; want %q", mailSvc.sent[0].TemplateName, "program-complete")
	}
}

func TestServiceReset(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, fakeCatalog{})
	usr := user.User{ID: "usr1"}

	pos := program.StartPosition
	for i := 0; i < 9; i++ {
		_, next, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: pos.Week, Day: pos.Day})
		if err != nil {
			t.Fatalf("Complete() failed: %v", err)
		}
		pos = next
	}

	prog, err := svc.Reset(ctx, usr.ID)
	if err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if prog.Current != program.StartPosition || prog.TotalCompleted() != 0 {
		t.Errorf("Current = %v, TotalCompleted = %d; want %v, 0",
			prog.Current, prog.TotalCompleted(), program.StartPosition)
	}
	if prog.UserID != usr.ID || prog.CohortNumber != program.DefaultCohort {
		t.Errorf("identity not preserved: %q cohort %d", prog.UserID, prog.CohortNumber)
	}
}

func TestServiceReset_notFound(t *testing.T) {
	svc, _, _ := setup(t, fakeCatalog{})
	if _, err := svc.Reset(context.Background(), "ghost"); errors.Cause(err) != program.ErrNotFound {
		t.Errorf("Reset() error = %v; want ErrNotFound", err)
	}
}

func TestServiceSummary(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, fakeCatalog{})
	usr := user.User{ID: "usr1"}

	// lazily creates the record
	sum, err := svc.Summary(ctx, usr.ID)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if sum.CurrentWeek != 1 || sum.CurrentDay != 1 {
		t.Errorf("current = (%d,%d); want (1,1)", sum.CurrentWeek, sum.CurrentDay)
	}
	if sum.CurrentTitle != "Abiding Daily" {
		t.Errorf("CurrentTitle = %q", sum.CurrentTitle)
	}
	if sum.Cohort != "I" {
		t.Errorf("Cohort = %q; want I", sum.Cohort)
	}
	if sum.TotalDevotionals != program.TotalDevotionals || sum.Percent != 0 || sum.ProgramComplete {
		t.Errorf("fresh summary = %+v", sum)
	}

	pos := program.StartPosition
	for i := 0; i < 7; i++ {
		_, next, err := svc.Complete(ctx, usr, program.CompleteDevotional{Week: pos.Week, Day: pos.Day})
		if err != nil {
			t.Fatalf("Complete() failed: %v", err)
		}
		pos = next
	}

	sum, err = svc.Summary(ctx, usr.ID)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if sum.CurrentWeek != 2 || sum.CurrentDay != 1 {
		t.Errorf("current = (%d,%d); want (2,1)", sum.CurrentWeek, sum.CurrentDay)
	}
	if sum.WeekCompleted[0] != 7 {
		t.Errorf("WeekCompleted[0] = %d; want 7", sum.WeekCompleted[0])
	}
	if sum.TotalCompleted != 7 || sum.Percent != 20 {
		t.Errorf("TotalCompleted = %d, Percent = %d; want 7, 20", sum.TotalCompleted, sum.Percent)
	}
}
