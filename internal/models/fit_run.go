package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FitRun represents one completed estimation run over a dataset
type FitRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DatasetName     string          `db:"dataset_name" json:"dataset_name" validate:"required"`
	Parameters      json.RawMessage `db:"parameters" json:"parameters"`
	LogLikelihood   float64         `db:"log_likelihood" json:"log_likelihood"`
	CrossEntropy    float64         `db:"cross_entropy" json:"cross_entropy"`
	Converged       bool            `db:"converged" json:"converged"`
	OptionCount     int             `db:"option_count" json:"option_count"`
	ComparisonCount int             `db:"comparison_count" json:"comparison_count"`
	FittedAt        time.Time       `db:"fitted_at" json:"fitted_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// ParameterSet decodes the stored parameters JSON
func (f *FitRun) ParameterSet() (ParameterSet, error) {
	if f.Parameters == nil {
		return nil, fmt.Errorf("fit run %s has no parameters", f.ID)
	}
	var ps ParameterSet
	if err := json.Unmarshal(f.Parameters, &ps); err != nil {
		return nil, fmt.Errorf("failed to decode fit run parameters: %w", err)
	}
	return ps, nil
}

// SetParameterSet encodes the parameter set into the stored JSON column
func (f *FitRun) SetParameterSet(ps ParameterSet) error {
	data, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("failed to encode fit run parameters: %w", err)
	}
	f.Parameters = data
	return nil
}
