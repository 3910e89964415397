package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/preference-engine/internal/database"
	"github.com/yourusername/preference-engine/internal/models"
)

// PostgresComparisonRepository implements ComparisonRepository for PostgreSQL
type PostgresComparisonRepository struct {
	db *database.DB
}

// NewPostgresComparisonRepository creates a new comparison repository
func NewPostgresComparisonRepository(db *database.DB) ComparisonRepository {
	return &PostgresComparisonRepository{db: db}
}

// Create inserts a single comparison record
func (r *PostgresComparisonRepository) Create(ctx context.Context, comparison *models.Comparison) error {
	if err := comparison.Validate(); err != nil {
		return err
	}
	if comparison.ID == uuid.Nil {
		comparison.ID = uuid.New()
	}

	query := `
		INSERT INTO comparisons (id, dataset_name, option_a, option_b, chosen, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		comparison.ID, comparison.DatasetName, comparison.OptionA, comparison.OptionB,
		comparison.Chosen, comparison.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comparison: %w", err)
	}

	return nil
}

// CreateBatch inserts comparisons using pgx's batch support
func (r *PostgresComparisonRepository) CreateBatch(ctx context.Context, comparisons []*models.Comparison) error {
	if len(comparisons) == 0 {
		return nil
	}

	query := `
		INSERT INTO comparisons (id, dataset_name, option_a, option_b, chosen, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, comparison := range comparisons {
		if err := comparison.Validate(); err != nil {
			return err
		}
		if comparison.ID == uuid.Nil {
			comparison.ID = uuid.New()
		}
		batch.Queue(query,
			comparison.ID, comparison.DatasetName, comparison.OptionA, comparison.OptionB,
			comparison.Chosen, comparison.ObservedAt,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range comparisons {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert comparison batch: %w", err)
		}
	}

	return nil
}

// GetByDataset retrieves all comparisons for a dataset in observation order
func (r *PostgresComparisonRepository) GetByDataset(ctx context.Context, dataset string) ([]*models.Comparison, error) {
	query := `
		SELECT id, dataset_name, option_a, option_b, chosen, observed_at, created_at
		FROM comparisons
		WHERE dataset_name = $1
		ORDER BY observed_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	return scanComparisons(rows)
}

// GetByDatasetSince retrieves comparisons for a dataset observed after the given time
func (r *PostgresComparisonRepository) GetByDatasetSince(ctx context.Context, dataset string, since time.Time) ([]*models.Comparison, error) {
	query := `
		SELECT id, dataset_name, option_a, option_b, chosen, observed_at, created_at
		FROM comparisons
		WHERE dataset_name = $1 AND observed_at >= $2
		ORDER BY observed_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, dataset, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	return scanComparisons(rows)
}

// CountByDataset returns the number of stored comparisons for a dataset
func (r *PostgresComparisonRepository) CountByDataset(ctx context.Context, dataset string) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM comparisons WHERE dataset_name = $1`, dataset,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comparisons: %w", err)
	}
	return count, nil
}

// ListDatasets returns the distinct dataset names with stored comparisons
func (r *PostgresComparisonRepository) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT DISTINCT dataset_name FROM comparisons ORDER BY dataset_name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset name: %w", err)
		}
		datasets = append(datasets, name)
	}

	return datasets, rows.Err()
}

func scanComparisons(rows pgx.Rows) ([]*models.Comparison, error) {
	var comparisons []*models.Comparison
	for rows.Next() {
		c := &models.Comparison{}
		err := rows.Scan(
			&c.ID, &c.DatasetName, &c.OptionA, &c.OptionB, &c.Chosen, &c.ObservedAt, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		comparisons = append(comparisons, c)
	}

	return comparisons, rows.Err()
}
