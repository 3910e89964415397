package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/preference-engine/internal/models"
)

// ComparisonRepository defines the interface for pairwise comparison data access
type ComparisonRepository interface {
	Create(ctx context.Context, comparison *models.Comparison) error
	CreateBatch(ctx context.Context, comparisons []*models.Comparison) error
	GetByDataset(ctx context.Context, dataset string) ([]*models.Comparison, error)
	GetByDatasetSince(ctx context.Context, dataset string, since time.Time) ([]*models.Comparison, error)
	CountByDataset(ctx context.Context, dataset string) (int, error)
	ListDatasets(ctx context.Context) ([]string, error)
}

// FitRunRepository defines the interface for fitted parameter storage
type FitRunRepository interface {
	Create(ctx context.Context, run *models.FitRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FitRun, error)
	GetLatestByDataset(ctx context.Context, dataset string) (*models.FitRun, error)
	ListByDataset(ctx context.Context, dataset string, limit int) ([]*models.FitRun, error)
}
