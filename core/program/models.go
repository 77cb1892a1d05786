package program

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultCohort is assigned when a progress record is lazily created for a
// user that was never enrolled explicitly.
const DefaultCohort = 1

// Progress is a user's journey through the program: one record per user,
// created lazily on first access and mutated only through the Service.
type Progress struct {
	UserID         string     `json:"user_id"`
	Current        Position   `json:"current_position"`
	WeekCompleted  [Weeks]int `json:"week_completed_counts"` // index = week-1; each count capped at DaysPerWeek
	CompletedIDs   []int      `json:"completed_devotional_ids"`
	CohortNumber   int        `json:"cohort_number"`
	CohortName     string     `json:"cohort_name"` // Roman numeral display of CohortNumber
	StartDate      time.Time  `json:"start_date"`  // UTC
	LastAccessedAt time.Time  `json:"last_accessed_at"` // UTC
}

func NewProgress(userID string, cohortNumber int) Progress {
	now := time.Now().UTC()
	return Progress{
		UserID:         userID,
		Current:        StartPosition,
		CompletedIDs:   []int{},
		CohortNumber:   cohortNumber,
		CohortName:     RomanNumeral(cohortNumber),
		StartDate:      now,
		LastAccessedAt: now,
	}
}

// HasCompleted reports whether the devotional id was already marked complete.
func (p *Progress) HasCompleted(id int) bool {
	i := sort.SearchInts(p.CompletedIDs, id)
	return i < len(p.CompletedIDs) && p.CompletedIDs[i] == id
}

// markCompleted inserts id into the completed set, keeping it sorted.
// Idempotent: an id is recorded at most once.
func (p *Progress) markCompleted(id int) {
	i := sort.SearchInts(p.CompletedIDs, id)
	if i < len(p.CompletedIDs) && p.CompletedIDs[i] == id {
		return
	}
	p.CompletedIDs = append(p.CompletedIDs, 0)
	copy(p.CompletedIDs[i+1:], p.CompletedIDs[i:])
	p.CompletedIDs[i] = id
}

// Advance records completion of the current devotional and moves the record
// to the next position. Returns the new current position.
func (p *Progress) Advance(now time.Time) Position {
	pos := p.Current
	if n := p.WeekCompleted[pos.Week-1] + 1; n <= DaysPerWeek {
		p.WeekCompleted[pos.Week-1] = n
	}
	p.markCompleted(pos.DevotionalID())
	p.Current = pos.Next()
	p.LastAccessedAt = now.UTC()
	return p.Current
}

// Reset reinitializes the journey, preserving identity and cohort.
func (p *Progress) Reset(now time.Time) {
	p.Current = StartPosition
	p.WeekCompleted = [Weeks]int{}
	p.CompletedIDs = []int{}
	p.StartDate = now.UTC()
	p.LastAccessedAt = now.UTC()
}

// TotalCompleted is the number of distinct devotionals marked complete.
func (p *Progress) TotalCompleted() int {
	return len(p.CompletedIDs)
}

// Completed reports whether the whole program has been finished.
func (p *Progress) Completed() bool {
	return p.HasCompleted(FinalPosition.DevotionalID())
}

// Summary is the progress projection consumed by the UI.
type Summary struct {
	CurrentWeek      int        `json:"current_week"`
	CurrentDay       int        `json:"current_day"`
	CurrentTitle     string     `json:"current_title"`
	Cohort           string     `json:"cohort"`
	WeekCompleted    [Weeks]int `json:"week_completed_counts"` // out of 7 each
	TotalCompleted   int        `json:"total_completed"`
	TotalDevotionals int        `json:"total_devotionals"`
	Percent          int        `json:"percent"`
	ProgramComplete  bool       `json:"program_complete"`
}

// CompleteDevotional is the request to mark a devotional complete.
type CompleteDevotional struct {
	Week int `json:"week" validate:"required,min=1,max=5"`
	Day  int `json:"day" validate:"required,min=1,max=7"`
}

func (cd CompleteDevotional) Validate(validate *validator.Validate) error {
	return validate.Struct(cd)
}

func (cd CompleteDevotional) Position() Position {
	return Position{Week: cd.Week, Day: cd.Day}
}
