//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/preference-engine/internal/database"
	"github.com/yourusername/preference-engine/internal/models"
	"github.com/yourusername/preference-engine/internal/repository"
)

// TestRepositoryIntegration exercises both repositories against real Postgres
func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	t.Run("ComparisonRepository", func(t *testing.T) {
		comparison := &models.Comparison{
			ID:          uuid.New(),
			DatasetName: "integration",
			OptionA:     "alpha",
			OptionB:     "beta",
			Chosen:      "beta",
			ObservedAt:  time.Now(),
		}
		require.NoError(t, repos.Comparison.Create(ctx, comparison))

		batch := []*models.Comparison{
			{ID: uuid.New(), DatasetName: "integration", OptionA: "alpha", OptionB: "gamma", Chosen: "gamma", ObservedAt: time.Now()},
			{ID: uuid.New(), DatasetName: "integration", OptionA: "beta", OptionB: "gamma", Chosen: "beta", ObservedAt: time.Now()},
		}
		require.NoError(t, repos.Comparison.CreateBatch(ctx, batch))

		stored, err := repos.Comparison.GetByDataset(ctx, "integration")
		require.NoError(t, err)
		assert.Len(t, stored, 3)

		count, err := repos.Comparison.CountByDataset(ctx, "integration")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		datasets, err := repos.Comparison.ListDatasets(ctx)
		require.NoError(t, err)
		assert.Contains(t, datasets, "integration")
	})

	t.Run("FitRunRepository", func(t *testing.T) {
		run := &models.FitRun{
			ID:              uuid.New(),
			DatasetName:     "integration",
			LogLikelihood:   -4.2,
			CrossEntropy:    0.42,
			Converged:       true,
			OptionCount:     3,
			ComparisonCount: 3,
			FittedAt:        time.Now(),
		}
		require.NoError(t, run.SetParameterSet(models.ParameterSet{
			"alpha": {Mu: -0.5, Sigma: 1.1},
			"beta":  {Mu: 0.7, Sigma: 0.9},
			"gamma": {Mu: 0.1, Sigma: 1.0},
		}))
		require.NoError(t, repos.FitRun.Create(ctx, run))

		retrieved, err := repos.FitRun.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.DatasetName, retrieved.DatasetName)
		assert.InDelta(t, run.LogLikelihood, retrieved.LogLikelihood, 1e-9)

		latest, err := repos.FitRun.GetLatestByDataset(ctx, "integration")
		require.NoError(t, err)
		assert.Equal(t, run.ID, latest.ID)

		ps, err := latest.ParameterSet()
		require.NoError(t, err)
		assert.Len(t, ps, 3)
		assert.InDelta(t, 0.7, ps["beta"].Mu, 1e-9)

		_, err = repos.FitRun.GetLatestByDataset(ctx, "never-fitted")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

// TestConcurrentComparisonWrites verifies the pool handles parallel batches
func TestConcurrentComparisonWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	var wg sync.WaitGroup
	concurrency := 10

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comparison := &models.Comparison{
				ID:          uuid.New(),
				DatasetName: "concurrent",
				OptionA:     "left",
				OptionB:     "right",
				Chosen:      "left",
				ObservedAt:  time.Now(),
			}
			assert.NoError(t, repos.Comparison.Create(ctx, comparison))
		}()
	}

	wg.Wait()

	count, err := repos.Comparison.CountByDataset(ctx, "concurrent")
	require.NoError(t, err)
	assert.Equal(t, concurrency, count)
}
