package devotional

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/imani/core"
	"github.com/trezcool/imani/core/program"
)

// Devotional is one content unit of the curriculum, keyed by (week, day).
// ID is derived: (week-1)*7 + day.
type Devotional struct {
	ID        int       `json:"id"`
	Week      int       `json:"week"`
	Day       int       `json:"day"`
	Title     string    `json:"title"`
	Passage   string    `json:"passage"` // scripture reference, e.g. "John 15:1-8"
	Body      string    `json:"body"`
	VideoURL  string    `json:"video_url,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (d Devotional) Position() program.Position {
	return program.Position{Week: d.Week, Day: d.Day}
}

// FilterAccessible returns the items visible to a user at `current`,
// preserving the original order. An absent or malformed position hides
// everything.
func FilterAccessible(items []Devotional, current *program.Position) []Devotional {
	accessible := make([]Devotional, 0, len(items))
	if current == nil || !current.IsValid() {
		return accessible
	}
	for _, item := range items {
		if program.Accessible(item.Position(), *current) {
			accessible = append(accessible, item)
		}
	}
	return accessible
}

// NewDevotional contains information needed to create a new Devotional.
type NewDevotional struct {
	Week     int    `json:"week" validate:"required,min=1,max=5"`
	Day      int    `json:"day" validate:"required,min=1,max=7"`
	Title    string `json:"title" validate:"required"`
	Passage  string `json:"passage"`
	Body     string `json:"body" validate:"required"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
}

func (nd *NewDevotional) Validate(validate *validator.Validate) error {
	nd.Title = core.CleanString(nd.Title)
	nd.Passage = core.CleanString(nd.Passage)
	return validate.Struct(nd)
}

// UpdateDevotional defines what may be modified on an existing Devotional.
// The (week, day) position is fixed; move content, not slots.
type UpdateDevotional struct {
	Title    string `json:"title"`
	Passage  string `json:"passage"`
	Body     string `json:"body"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
}

func (ud *UpdateDevotional) Validate(validate *validator.Validate) error {
	ud.Title = core.CleanString(ud.Title)
	ud.Passage = core.CleanString(ud.Passage)
	return validate.Struct(ud)
}
