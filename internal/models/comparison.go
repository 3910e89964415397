package models

import (
	"time"

	"github.com/google/uuid"
)

// Comparison represents one observed binary choice between two presented options.
// Records are immutable once stored.
type Comparison struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DatasetName string    `db:"dataset_name" json:"dataset_name" validate:"required"`
	OptionA     string    `db:"option_a" json:"option_a" validate:"required"`
	OptionB     string    `db:"option_b" json:"option_b" validate:"required"`
	Chosen      string    `db:"chosen" json:"chosen" validate:"required"`
	ObservedAt  time.Time `db:"observed_at" json:"observed_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Validate checks that the chosen option is one of the two presented options
func (c *Comparison) Validate() error {
	if c.Chosen != c.OptionA && c.Chosen != c.OptionB {
		return NewValidationError(ValidationMalformedRecord,
			"chosen option %q is neither %q nor %q", c.Chosen, c.OptionA, c.OptionB)
	}
	return nil
}

// ChoseA reports whether the first presented option was chosen
func (c *Comparison) ChoseA() bool {
	return c.Chosen == c.OptionA
}

// Rejected returns the presented option that was not chosen
func (c *Comparison) Rejected() string {
	if c.ChoseA() {
		return c.OptionB
	}
	return c.OptionA
}
