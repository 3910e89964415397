package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/logger"
	"github.com/yourusername/preference-engine/internal/metrics"
	"github.com/yourusername/preference-engine/internal/models"
	"github.com/yourusername/preference-engine/internal/repository"
	"github.com/yourusername/preference-engine/internal/thurstonian"
)

// EstimationService runs maximum-likelihood fits over stored comparisons
// and persists the resulting parameter sets
type EstimationService struct {
	comparisonRepo repository.ComparisonRepository
	fitRunRepo     repository.FitRunRepository
	estimator      *thurstonian.Estimator
	fitLogger      *logger.FitLogger
	log            *logrus.Entry
}

// NewEstimationService creates a new estimation service
func NewEstimationService(
	comparisonRepo repository.ComparisonRepository,
	fitRunRepo repository.FitRunRepository,
	estimator *thurstonian.Estimator,
	baseLogger *logrus.Logger,
) *EstimationService {
	return &EstimationService{
		comparisonRepo: comparisonRepo,
		fitRunRepo:     fitRunRepo,
		estimator:      estimator,
		fitLogger:      logger.NewFitLogger(baseLogger),
		log:            baseLogger.WithField("component", "estimation"),
	}
}

// FitDataset loads all comparisons for the dataset, fits utility parameters
// and stores the run. The stored run includes parameters even when the
// optimizer did not converge; callers can inspect Converged.
func (s *EstimationService) FitDataset(ctx context.Context, dataset string) (*models.FitRun, error) {
	comparisons, err := s.comparisonRepo.GetByDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparisons for %s: %w", dataset, err)
	}

	run, err := s.fit(ctx, dataset, comparisons)
	if err != nil {
		return nil, err
	}

	if err := s.fitRunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store fit run for %s: %w", dataset, err)
	}

	return run, nil
}

// FitComparisons fits a parameter set over an explicit comparison slice
// without touching the database. Used for ad-hoc fits from file sources.
func (s *EstimationService) FitComparisons(ctx context.Context, dataset string, comparisons []*models.Comparison) (*models.FitRun, error) {
	return s.fit(ctx, dataset, comparisons)
}

// FitAll fits every dataset that has stored comparisons
func (s *EstimationService) FitAll(ctx context.Context) error {
	datasets, err := s.comparisonRepo.ListDatasets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	var firstErr error
	for _, dataset := range datasets {
		if _, err := s.FitDataset(ctx, dataset); err != nil {
			s.log.WithError(err).WithField("dataset", dataset).Error("Dataset fit failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Datasets lists every dataset that has stored comparisons
func (s *EstimationService) Datasets(ctx context.Context) ([]string, error) {
	return s.comparisonRepo.ListDatasets(ctx)
}

func (s *EstimationService) fit(ctx context.Context, dataset string, comparisons []*models.Comparison) (*models.FitRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options := distinctOptions(comparisons)
	s.fitLogger.LogFitStarted(dataset, len(comparisons), len(options))

	startTime := time.Now()
	result, err := s.estimator.Fit(comparisons)
	if err != nil {
		s.fitLogger.LogFitError(dataset, err.Error())
		metrics.RecordFitFailure(dataset)
		return nil, fmt.Errorf("fit failed for %s: %w", dataset, err)
	}
	duration := time.Since(startTime)

	crossEntropy, err := thurstonian.CrossEntropy(comparisons, result.Parameters)
	if err != nil {
		s.fitLogger.LogFitError(dataset, err.Error())
		metrics.RecordFitFailure(dataset)
		return nil, fmt.Errorf("cross-entropy failed for %s: %w", dataset, err)
	}

	if !result.Converged {
		s.fitLogger.LogConvergenceWarning(dataset, result.Iterations)
	}
	if saturated := result.SaturatedOptions(); len(saturated) > 0 {
		s.fitLogger.LogSaturatedOptions(dataset, saturated)
	}

	run := &models.FitRun{
		ID:              uuid.New(),
		DatasetName:     dataset,
		LogLikelihood:   result.LogLikelihood,
		CrossEntropy:    crossEntropy,
		Converged:       result.Converged,
		OptionCount:     len(result.Parameters),
		ComparisonCount: len(comparisons),
		FittedAt:        time.Now(),
	}
	if err := run.SetParameterSet(result.Parameters); err != nil {
		return nil, err
	}

	s.fitLogger.LogFitCompleted(dataset, result.LogLikelihood, crossEntropy, result.Converged, result.Iterations, duration.Seconds())
	metrics.RecordFit(dataset, duration.Seconds(), result.LogLikelihood, crossEntropy, len(result.Parameters), result.Converged)

	return run, nil
}

func distinctOptions(comparisons []*models.Comparison) []string {
	seen := make(map[string]struct{}, len(comparisons)*2)
	var options []string
	for _, c := range comparisons {
		for _, option := range []string{c.OptionA, c.OptionB} {
			if _, ok := seen[option]; !ok {
				seen[option] = struct{}{}
				options = append(options, option)
			}
		}
	}
	return options
}
