package reflection

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/imani/core"
)

// Reflection is a user's written response to a devotional.
type Reflection struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DevotionalID int       `json:"devotional_id"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewReflection contains information needed to create a new Reflection.
type NewReflection struct {
	Week int    `json:"week" validate:"required,min=1,max=5"`
	Day  int    `json:"day" validate:"required,min=1,max=7"`
	Body string `json:"body" validate:"required,max=5000"`
}

func (nr *NewReflection) Validate(validate *validator.Validate) error {
	nr.Body = core.CleanString(nr.Body)
	return validate.Struct(nr)
}

// UpdateReflection defines what may be modified on an existing Reflection.
type UpdateReflection struct {
	Body string `json:"body" validate:"required,max=5000"`
}

func (ur *UpdateReflection) Validate(validate *validator.Validate) error {
	ur.Body = core.CleanString(ur.Body)
	return validate.Struct(ur)
}
