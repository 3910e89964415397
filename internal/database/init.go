package database

import (
	"context"
	"fmt"

	"github.com/yourusername/preference-engine/internal/config"
)

// schema contains the tables required by the preference engine. CREATE IF
// NOT EXISTS keeps initialization idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS comparisons (
	id UUID PRIMARY KEY,
	dataset_name TEXT NOT NULL,
	option_a TEXT NOT NULL,
	option_b TEXT NOT NULL,
	chosen TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_comparisons_dataset ON comparisons (dataset_name, observed_at);

CREATE TABLE IF NOT EXISTS fit_runs (
	id UUID PRIMARY KEY,
	dataset_name TEXT NOT NULL,
	parameters JSONB NOT NULL,
	log_likelihood DOUBLE PRECISION NOT NULL,
	cross_entropy DOUBLE PRECISION NOT NULL,
	converged BOOLEAN NOT NULL,
	option_count INTEGER NOT NULL,
	comparison_count INTEGER NOT NULL,
	fitted_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fit_runs_dataset ON fit_runs (dataset_name, fitted_at DESC);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
