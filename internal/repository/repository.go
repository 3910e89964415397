package repository

import (
	"fmt"

	"github.com/yourusername/preference-engine/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Comparison ComparisonRepository
	FitRun     FitRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Comparison: NewPostgresComparisonRepository(db),
		FitRun:     NewPostgresFitRunRepository(db),
	}, nil
}
