// Package service coordinates ingestion, estimation and parameter serving.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/datasource"
	"github.com/yourusername/preference-engine/internal/metrics"
	"github.com/yourusername/preference-engine/internal/models"
	"github.com/yourusername/preference-engine/internal/repository"
)

// IngestionService pulls comparison records from configured sources,
// validates them and persists them in batches
type IngestionService struct {
	sources   []datasource.ComparisonSource
	repo      repository.ComparisonRepository
	logger    *logrus.Entry
	batchSize int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.ComparisonSource,
	repo repository.ComparisonRepository,
	logger *logrus.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &IngestionService{
		sources:   sources,
		repo:      repo,
		logger:    logger.WithField("component", "ingestion"),
		batchSize: batchSize,
	}
}

// IngestFromSource fetches and stores comparisons from the named source
// within the given observation window. Each call gets its own metrics
// tracker so overlapping runs do not clobber each other.
func (s *IngestionService) IngestFromSource(ctx context.Context, sourceName string, startDate, endDate time.Time) (*IngestionMetrics, error) {
	m := NewIngestionMetrics()

	source := s.findSource(sourceName)
	if source == nil {
		return nil, fmt.Errorf("data source not found: %s", sourceName)
	}

	s.logger.WithFields(logrus.Fields{
		"source":     sourceName,
		"dataset":    source.Dataset(),
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
	}).Info("Starting comparison ingestion")

	records, err := source.FetchComparisons(ctx, startDate, endDate)
	if err != nil {
		m.RecordError()
		m.Duration = time.Since(m.StartTime)
		s.logger.WithError(err).WithField("source", sourceName).Error("Failed to fetch comparisons")
		return m, fmt.Errorf("failed to fetch comparisons: %w", err)
	}

	m.TotalRecords = len(records)

	stored, rejected := 0, 0
	for i := 0; i < len(records); i += s.batchSize {
		end := i + s.batchSize
		if end > len(records) {
			end = len(records)
		}

		batchStored, batchRejected, err := s.processBatch(ctx, source.Dataset(), records[i:end], m)
		stored += batchStored
		rejected += batchRejected
		if err != nil {
			m.RecordError()
			s.logger.WithError(err).Error("Error storing comparison batch")
			// Continue processing other batches
		}
	}

	m.Duration = time.Since(m.StartTime)
	metrics.RecordIngestion(sourceName, stored, rejected)

	s.logger.WithFields(logrus.Fields{
		"source":   sourceName,
		"fetched":  len(records),
		"stored":   stored,
		"rejected": rejected,
		"duration": m.Duration,
	}).Info("Comparison ingestion complete")

	return m, nil
}

// IngestAll runs ingestion across every enabled source and returns metrics
// aggregated over all of them
func (s *IngestionService) IngestAll(ctx context.Context, startDate, endDate time.Time) (*IngestionMetrics, error) {
	total := NewIngestionMetrics()

	var firstErr error
	for _, source := range s.sources {
		if !source.IsEnabled() {
			s.logger.WithField("source", source.Name()).Debug("Skipping disabled source")
			continue
		}
		m, err := s.IngestFromSource(ctx, source.Name(), startDate, endDate)
		if m != nil {
			total.Merge(m)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	total.Duration = time.Since(total.StartTime)
	return total, firstErr
}

// processBatch validates and stores one batch of records
func (s *IngestionService) processBatch(ctx context.Context, dataset string, records []datasource.ComparisonRecord, m *IngestionMetrics) (stored, rejected int, err error) {
	comparisons := make([]*models.Comparison, 0, len(records))
	now := time.Now()

	for _, record := range records {
		comparison := &models.Comparison{
			ID:          uuid.New(),
			DatasetName: dataset,
			OptionA:     record.OptionA,
			OptionB:     record.OptionB,
			Chosen:      record.Chosen,
			ObservedAt:  record.ObservedAt,
			CreatedAt:   now,
		}

		if err := comparison.Validate(); err != nil {
			m.RecordValidationError()
			rejected++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"option_a": record.OptionA,
				"option_b": record.OptionB,
			}).Warn("Rejecting malformed comparison record")
			continue
		}

		comparisons = append(comparisons, comparison)
	}

	if len(comparisons) == 0 {
		return 0, rejected, nil
	}

	if err := s.repo.CreateBatch(ctx, comparisons); err != nil {
		return 0, rejected, fmt.Errorf("failed to store comparison batch: %w", err)
	}

	m.RecordStored(len(comparisons))
	return len(comparisons), rejected, nil
}

// findSource locates a configured source by name
func (s *IngestionService) findSource(name string) datasource.ComparisonSource {
	for _, source := range s.sources {
		if source.Name() == name {
			return source
		}
	}
	return nil
}
