package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/preference-engine/internal/database"
	"github.com/yourusername/preference-engine/internal/models"
)

// PostgresFitRunRepository implements FitRunRepository for PostgreSQL
type PostgresFitRunRepository struct {
	db *database.DB
}

// NewPostgresFitRunRepository creates a new fit run repository
func NewPostgresFitRunRepository(db *database.DB) FitRunRepository {
	return &PostgresFitRunRepository{db: db}
}

const fitRunColumns = `id, dataset_name, parameters, log_likelihood, cross_entropy, converged, option_count, comparison_count, fitted_at, created_at`

// Create persists a completed estimation run
func (r *PostgresFitRunRepository) Create(ctx context.Context, run *models.FitRun) error {
	if run.DatasetName == "" {
		return models.ErrDatasetRequired
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	query := `
		INSERT INTO fit_runs (id, dataset_name, parameters, log_likelihood, cross_entropy, converged, option_count, comparison_count, fitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.DatasetName, run.Parameters, run.LogLikelihood, run.CrossEntropy,
		run.Converged, run.OptionCount, run.ComparisonCount, run.FittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fit run: %w", err)
	}

	return nil
}

// GetByID retrieves a fit run by ID
func (r *PostgresFitRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FitRun, error) {
	query := `SELECT ` + fitRunColumns + ` FROM fit_runs WHERE id = $1`

	run, err := scanFitRun(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fit run: %w", err)
	}
	return run, nil
}

// GetLatestByDataset retrieves the most recent fit run for a dataset
func (r *PostgresFitRunRepository) GetLatestByDataset(ctx context.Context, dataset string) (*models.FitRun, error) {
	query := `
		SELECT ` + fitRunColumns + `
		FROM fit_runs
		WHERE dataset_name = $1
		ORDER BY fitted_at DESC
		LIMIT 1
	`

	run, err := scanFitRun(r.db.GetPool().QueryRow(ctx, query, dataset))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest fit run: %w", err)
	}
	return run, nil
}

// ListByDataset retrieves recent fit runs for a dataset, newest first
func (r *PostgresFitRunRepository) ListByDataset(ctx context.Context, dataset string, limit int) ([]*models.FitRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + fitRunColumns + `
		FROM fit_runs
		WHERE dataset_name = $1
		ORDER BY fitted_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fit runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.FitRun
	for rows.Next() {
		run, err := scanFitRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFitRun(row rowScanner) (*models.FitRun, error) {
	run := &models.FitRun{}
	err := row.Scan(
		&run.ID, &run.DatasetName, &run.Parameters, &run.LogLikelihood, &run.CrossEntropy,
		&run.Converged, &run.OptionCount, &run.ComparisonCount, &run.FittedAt, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fit run: %w", err)
	}
	return run, nil
}
