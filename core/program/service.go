package program

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/imani/core"
	"github.com/trezcool/imani/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("progress not found")
	ErrInvalidDevotional = errors.New("invalid devotional position")

	// ErrProgressModified is returned by Repository.UpdateProgress when the
	// stored record no longer points at the expected position; i.e. a
	// concurrent completion won the race.
	ErrProgressModified = errors.New("progress was modified concurrently")
)

// OutOfSequenceError rejects a completion request for any devotional other
// than the current one. It carries the authoritative current position so the
// caller can resynchronize its state.
type OutOfSequenceError struct {
	Current Position
}

func (e *OutOfSequenceError) Error() string {
	return "can only complete the current devotional"
}

type (
	// Repository persists Progress records.
	Repository interface {
		GetProgressByUserID(ctx context.Context, userID string) (Progress, error)
		CreateProgress(ctx context.Context, prog Progress) (Progress, error)
		// UpdateProgress writes prog only if the stored record still points at
		// `expected`; it fails with ErrProgressModified otherwise. This is the
		// single atomic read-modify-write an advancement relies on.
		UpdateProgress(ctx context.Context, prog Progress, expected Position) (Progress, error)
		// SaveProgress writes prog unconditionally (resets, admin fixes).
		SaveProgress(ctx context.Context, prog Progress) (Progress, error)
	}

	// Catalog is the read-only devotional lookup the program needs.
	Catalog interface {
		DevotionalExists(ctx context.Context, week, day int) (bool, error)
		DevotionalTitle(ctx context.Context, week, day int) (string, error)
	}

	Service struct {
		repo    Repository
		catalog Catalog
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, catalog Catalog, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// GetOrCreate returns the user's Progress, lazily creating a fresh record at
// the start position the first time the user shows up.
func (svc *Service) GetOrCreate(ctx context.Context, userID string) (Progress, error) {
	prog, err := svc.repo.GetProgressByUserID(ctx, userID)
	if err == nil {
		return prog, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Progress{}, errors.Wrap(err, "getting progress")
	}
	prog, err = svc.repo.CreateProgress(ctx, NewProgress(userID, DefaultCohort))
	if err != nil {
		return Progress{}, errors.Wrap(err, "creating progress")
	}
	return prog, nil
}

// Complete marks the devotional at (req.Week, req.Day) complete for usr and
// advances their position. The request must name a devotional that exists in
// the catalog and must exactly equal the user's current position; see
// ErrInvalidDevotional and OutOfSequenceError.
func (svc *Service) Complete(ctx context.Context, usr user.User, req CompleteDevotional) (Progress, Position, error) {
	exists, err := svc.catalog.DevotionalExists(ctx, req.Week, req.Day)
	if err != nil {
		return Progress{}, Position{}, errors.Wrap(err, "checking devotional existence")
	}
	if !exists {
		return Progress{}, Position{}, ErrInvalidDevotional
	}

	prog, err := svc.GetOrCreate(ctx, usr.ID)
	if err != nil {
		return Progress{}, Position{}, err
	}

	requested := req.Position()
	if requested != prog.Current {
		return Progress{}, Position{}, &OutOfSequenceError{Current: prog.Current}
	}

	next := prog.Advance(time.Now())

	prog, err = svc.repo.UpdateProgress(ctx, prog, requested)
	if err != nil {
		if errors.Cause(err) == ErrProgressModified {
			// lost the race; report the fresh position
			if fresh, gerr := svc.repo.GetProgressByUserID(ctx, usr.ID); gerr == nil {
				return Progress{}, Position{}, &OutOfSequenceError{Current: fresh.Current}
			}
			return Progress{}, Position{}, &OutOfSequenceError{Current: requested}
		}
		return Progress{}, Position{}, errors.Wrap(err, "updating progress")
	}

	if prog.Completed() {
		svc.sendCongratsEmail(usr, prog)
	}
	return prog, next, nil
}

// Reset reinitializes the user's journey, preserving identity and cohort.
func (svc *Service) Reset(ctx context.Context, userID string) (Progress, error) {
	prog, err := svc.repo.GetProgressByUserID(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	prog.Reset(time.Now())
	prog, err = svc.repo.SaveProgress(ctx, prog)
	if err != nil {
		return Progress{}, errors.Wrap(err, "saving progress")
	}
	return prog, nil
}

// Summary builds the formatted projection for the user, lazily creating
// their record if needed.
func (svc *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	prog, err := svc.GetOrCreate(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return svc.buildSummary(ctx, prog)
}

func (svc *Service) buildSummary(ctx context.Context, prog Progress) (Summary, error) {
	title, err := svc.catalog.DevotionalTitle(ctx, prog.Current.Week, prog.Current.Day)
	if err != nil {
		return Summary{}, errors.Wrap(err, "looking up devotional title")
	}
	return Summary{
		CurrentWeek:      prog.Current.Week,
		CurrentDay:       prog.Current.Day,
		CurrentTitle:     title,
		Cohort:           prog.CohortName,
		WeekCompleted:    prog.WeekCompleted,
		TotalCompleted:   prog.TotalCompleted(),
		TotalDevotionals: TotalDevotionals,
		Percent:          prog.TotalCompleted() * 100 / TotalDevotionals,
		ProgramComplete:  prog.Completed(),
	}, nil
}

func (svc *Service) sendCongratsEmail(usr user.User, prog Progress) {
	if usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "You finished the journey!",
		TemplateName: "program-complete",
		TemplateData: struct {
			Name   string
			Cohort string
		}{usr.Name, fmt.Sprintf("Cohort %s", prog.CohortName)},
	})
}
