// Package scheduler runs periodic ingestion and refit jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/service"
)

// Scheduler manages periodic ingestion and estimation jobs
type Scheduler struct {
	cron            *cron.Cron
	ingestionSvc    *service.IngestionService
	estimationSvc   *service.EstimationService
	probabilitySvc  *service.ProbabilityService
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(
	ingestionSvc *service.IngestionService,
	estimationSvc *service.EstimationService,
	probabilitySvc *service.ProbabilityService,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc:    ingestionSvc,
		estimationSvc:   estimationSvc,
		probabilitySvc:  probabilitySvc,
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleIngestion schedules periodic ingestion across all enabled
// sources. Each run pulls records observed since the previous interval.
func (s *Scheduler) ScheduleIngestion(intervalMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	interval := time.Duration(intervalMinutes) * time.Minute

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		endDate := time.Now()
		startDate := endDate.Add(-interval)

		m, err := s.ingestionSvc.IngestAll(ctx, startDate, endDate)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled ingestion failed")
			return
		}
		s.logger.Info(m.String())
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", intervalMinutes), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval_minutes", intervalMinutes).Info("Scheduled periodic ingestion")

	return nil
}

// ScheduleRefit schedules periodic refits over every stored dataset. Each
// refit invalidates the cached parameters so queries pick up the new fit.
func (s *Scheduler) ScheduleRefit(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		s.logger.Info("Starting scheduled refit")
		if err := s.estimationSvc.FitAll(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled refit failed")
			return
		}
		s.invalidateCaches(ctx)
		s.logger.Info("Scheduled refit completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled periodic refit")

	return nil
}

// invalidateCaches drops cached parameter sets for all refitted datasets
func (s *Scheduler) invalidateCaches(ctx context.Context) {
	if s.probabilitySvc == nil {
		return
	}
	datasets, err := s.estimationSvc.Datasets(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list datasets for cache invalidation")
		return
	}
	for _, dataset := range datasets {
		s.probabilitySvc.Invalidate(dataset)
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler shutdown timed out waiting for running jobs")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
