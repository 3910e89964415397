package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/preference-engine/internal/datasource"
	"github.com/yourusername/preference-engine/internal/models"
	"github.com/yourusername/preference-engine/internal/thurstonian"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// fakeSource serves a fixed record slice
type fakeSource struct {
	name    string
	dataset string
	records []datasource.ComparisonRecord
	err     error
}

func (f *fakeSource) FetchComparisons(_ context.Context, _, _ time.Time) ([]datasource.ComparisonRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}
func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) Dataset() string { return f.dataset }
func (f *fakeSource) IsEnabled() bool { return true }

// fakeComparisonRepo stores comparisons in memory
type fakeComparisonRepo struct {
	comparisons []*models.Comparison
	createErr   error
}

func (f *fakeComparisonRepo) Create(_ context.Context, c *models.Comparison) error {
	f.comparisons = append(f.comparisons, c)
	return nil
}

func (f *fakeComparisonRepo) CreateBatch(_ context.Context, cs []*models.Comparison) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.comparisons = append(f.comparisons, cs...)
	return nil
}

func (f *fakeComparisonRepo) GetByDataset(_ context.Context, dataset string) ([]*models.Comparison, error) {
	var out []*models.Comparison
	for _, c := range f.comparisons {
		if c.DatasetName == dataset {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComparisonRepo) GetByDatasetSince(_ context.Context, dataset string, since time.Time) ([]*models.Comparison, error) {
	var out []*models.Comparison
	for _, c := range f.comparisons {
		if c.DatasetName == dataset && !c.ObservedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComparisonRepo) CountByDataset(_ context.Context, dataset string) (int, error) {
	cs, _ := f.GetByDataset(context.Background(), dataset)
	return len(cs), nil
}

func (f *fakeComparisonRepo) ListDatasets(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range f.comparisons {
		if !seen[c.DatasetName] {
			seen[c.DatasetName] = true
			out = append(out, c.DatasetName)
		}
	}
	return out, nil
}

// fakeFitRunRepo stores fit runs in memory
type fakeFitRunRepo struct {
	runs       []*models.FitRun
	latestGets int
}

func (f *fakeFitRunRepo) Create(_ context.Context, run *models.FitRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeFitRunRepo) GetByID(_ context.Context, id uuid.UUID) (*models.FitRun, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeFitRunRepo) GetLatestByDataset(_ context.Context, dataset string) (*models.FitRun, error) {
	f.latestGets++
	for i := len(f.runs) - 1; i >= 0; i-- {
		if f.runs[i].DatasetName == dataset {
			return f.runs[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeFitRunRepo) ListByDataset(_ context.Context, dataset string, limit int) ([]*models.FitRun, error) {
	var out []*models.FitRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.runs[i].DatasetName == dataset {
			out = append(out, f.runs[i])
		}
	}
	return out, nil
}

func comparison(dataset, a, b, chosen string) *models.Comparison {
	return &models.Comparison{
		ID:          uuid.New(),
		DatasetName: dataset,
		OptionA:     a,
		OptionB:     b,
		Chosen:      chosen,
		ObservedAt:  time.Now(),
	}
}

func TestIngestionServiceStoresValidRecords(t *testing.T) {
	now := time.Now()
	source := &fakeSource{
		name:    "test-source",
		dataset: "flavors",
		records: []datasource.ComparisonRecord{
			{OptionA: "vanilla", OptionB: "chocolate", Chosen: "chocolate", ObservedAt: now},
			{OptionA: "vanilla", OptionB: "mint", Chosen: "vanilla", ObservedAt: now},
			{OptionA: "mint", OptionB: "chocolate", Chosen: "pistachio", ObservedAt: now},
		},
	}
	repo := &fakeComparisonRepo{}

	svc := NewIngestionService([]datasource.ComparisonSource{source}, repo, testLogger(), 2)
	m, err := svc.IngestFromSource(context.Background(), "test-source", now.Add(-time.Hour), now.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalRecords)
	assert.Equal(t, 2, m.StoredRecords)
	assert.Equal(t, 1, m.ValidationErrors)
	require.Len(t, repo.comparisons, 2)
	assert.Equal(t, "flavors", repo.comparisons[0].DatasetName)
	assert.NotEqual(t, uuid.Nil, repo.comparisons[0].ID)
}

func TestIngestionServiceUnknownSource(t *testing.T) {
	svc := NewIngestionService(nil, &fakeComparisonRepo{}, testLogger(), 10)
	_, err := svc.IngestFromSource(context.Background(), "missing", time.Now(), time.Now())
	assert.ErrorContains(t, err, "data source not found")
}

func TestIngestionServiceFetchFailure(t *testing.T) {
	source := &fakeSource{
		name:    "broken",
		dataset: "flavors",
		err:     datasource.NewDataSourceError("broken", datasource.ErrCodeNetworkError, "timeout", errors.New("timeout")),
	}
	svc := NewIngestionService([]datasource.ComparisonSource{source}, &fakeComparisonRepo{}, testLogger(), 10)

	m, err := svc.IngestFromSource(context.Background(), "broken", time.Now(), time.Now())
	require.Error(t, err)
	assert.Equal(t, 1, m.Errors)
}

func TestIngestAllAggregatesAcrossSources(t *testing.T) {
	now := time.Now()
	first := &fakeSource{
		name:    "first",
		dataset: "flavors",
		records: []datasource.ComparisonRecord{
			{OptionA: "vanilla", OptionB: "chocolate", Chosen: "chocolate", ObservedAt: now},
			{OptionA: "vanilla", OptionB: "mint", Chosen: "vanilla", ObservedAt: now},
		},
	}
	second := &fakeSource{
		name:    "second",
		dataset: "flavors",
		records: []datasource.ComparisonRecord{
			{OptionA: "mint", OptionB: "chocolate", Chosen: "mint", ObservedAt: now},
			{OptionA: "mint", OptionB: "chocolate", Chosen: "pistachio", ObservedAt: now},
		},
	}
	repo := &fakeComparisonRepo{}

	svc := NewIngestionService([]datasource.ComparisonSource{first, second}, repo, testLogger(), 10)
	m, err := svc.IngestAll(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))

	require.NoError(t, err)
	// Totals must cover every source, not just the last one processed.
	assert.Equal(t, 4, m.TotalRecords)
	assert.Equal(t, 3, m.StoredRecords)
	assert.Equal(t, 1, m.ValidationErrors)
	require.Len(t, repo.comparisons, 3)
}

func TestEstimationServiceFitDataset(t *testing.T) {
	repo := &fakeComparisonRepo{comparisons: []*models.Comparison{
		comparison("flavors", "A", "B", "B"),
		comparison("flavors", "A", "B", "B"),
		comparison("flavors", "A", "B", "B"),
		comparison("flavors", "A", "B", "A"),
		comparison("flavors", "B", "C", "B"),
		comparison("flavors", "B", "C", "B"),
		comparison("flavors", "B", "C", "B"),
		comparison("flavors", "C", "A", "C"),
		comparison("flavors", "C", "A", "C"),
		comparison("flavors", "C", "A", "C"),
	}}
	fitRuns := &fakeFitRunRepo{}

	est, err := thurstonian.NewEstimator(thurstonian.DefaultConfig())
	require.NoError(t, err)

	svc := NewEstimationService(repo, fitRuns, est, testLogger())
	run, err := svc.FitDataset(context.Background(), "flavors")
	require.NoError(t, err)
	require.Len(t, fitRuns.runs, 1)

	assert.Equal(t, "flavors", run.DatasetName)
	assert.Equal(t, 3, run.OptionCount)
	assert.Equal(t, 10, run.ComparisonCount)
	assert.Greater(t, run.CrossEntropy, 0.0)
	assert.Less(t, run.CrossEntropy, math.Ln2)

	ps, err := run.ParameterSet()
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Greater(t, ps["B"].Mu, ps["A"].Mu)
}

func TestEstimationServiceRejectsEmptyDataset(t *testing.T) {
	est, err := thurstonian.NewEstimator(thurstonian.DefaultConfig())
	require.NoError(t, err)

	svc := NewEstimationService(&fakeComparisonRepo{}, &fakeFitRunRepo{}, est, testLogger())
	_, err = svc.FitDataset(context.Background(), "empty")
	require.Error(t, err)
	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, models.ValidationEmptyInput, verr.Kind)
}

func TestProbabilityServiceWinProbability(t *testing.T) {
	run := &models.FitRun{
		ID:          uuid.New(),
		DatasetName: "flavors",
		FittedAt:    time.Now(),
	}
	require.NoError(t, run.SetParameterSet(models.ParameterSet{
		"A": {Mu: 1.0, Sigma: 1.0},
		"B": {Mu: -1.0, Sigma: 1.0},
	}))
	fitRuns := &fakeFitRunRepo{runs: []*models.FitRun{run}}

	svc := NewProbabilityService(fitRuns, time.Minute, testLogger())

	p, err := svc.WinProbability(context.Background(), "flavors", "A", "B")
	require.NoError(t, err)
	assert.Greater(t, p, 0.5)

	q, err := svc.WinProbability(context.Background(), "flavors", "B", "A")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p+q, 1e-12)

	// Second query should come from cache
	assert.Equal(t, 1, fitRuns.latestGets)

	svc.Invalidate("flavors")
	_, err = svc.WinProbability(context.Background(), "flavors", "A", "B")
	require.NoError(t, err)
	assert.Equal(t, 2, fitRuns.latestGets)
}

func TestProbabilityServiceUnknownOption(t *testing.T) {
	run := &models.FitRun{ID: uuid.New(), DatasetName: "flavors", FittedAt: time.Now()}
	require.NoError(t, run.SetParameterSet(models.ParameterSet{"A": {Mu: 0, Sigma: 1}}))
	svc := NewProbabilityService(&fakeFitRunRepo{runs: []*models.FitRun{run}}, time.Minute, testLogger())

	_, err := svc.WinProbability(context.Background(), "flavors", "A", "Z")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProbabilityServiceNoFit(t *testing.T) {
	svc := NewProbabilityService(&fakeFitRunRepo{}, time.Minute, testLogger())
	_, err := svc.WinProbability(context.Background(), "unknown", "A", "B")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIngestionMetricsString(t *testing.T) {
	m := NewIngestionMetrics()
	m.TotalRecords = 4
	m.RecordStored(3)
	m.RecordValidationError()
	assert.Contains(t, m.String(), "Stored=3 (75.0%)")
}
