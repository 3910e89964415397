package service

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/metrics"
	"github.com/yourusername/preference-engine/internal/models"
	"github.com/yourusername/preference-engine/internal/repository"
	"github.com/yourusername/preference-engine/internal/thurstonian"
)

// ProbabilityService answers pairwise win-probability queries against the
// latest fitted parameter set of a dataset. Parameter sets are cached with
// a TTL so repeated queries do not hit the database.
type ProbabilityService struct {
	fitRunRepo repository.FitRunRepository
	params     *cache.Cache
	ttl        time.Duration
	log        *logrus.Entry
}

// NewProbabilityService creates a new probability service
func NewProbabilityService(fitRunRepo repository.FitRunRepository, ttl time.Duration, baseLogger *logrus.Logger) *ProbabilityService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ProbabilityService{
		fitRunRepo: fitRunRepo,
		params:     cache.New(ttl, ttl*2),
		ttl:        ttl,
		log:        baseLogger.WithField("component", "probability"),
	}
}

// WinProbability returns the probability that optionX is preferred over
// optionY under the latest stored fit for the dataset
func (s *ProbabilityService) WinProbability(ctx context.Context, dataset, optionX, optionY string) (float64, error) {
	startTime := time.Now()

	ps, err := s.parameterSet(ctx, dataset)
	if err != nil {
		return 0, err
	}

	x, err := ps.Get(optionX)
	if err != nil {
		return 0, fmt.Errorf("dataset %s: %w", dataset, err)
	}
	y, err := ps.Get(optionY)
	if err != nil {
		return 0, fmt.Errorf("dataset %s: %w", dataset, err)
	}

	p := thurstonian.Probability(x.Mu, y.Mu, x.Sigma, y.Sigma)
	metrics.RecordProbabilityQuery(time.Since(startTime).Seconds())
	return p, nil
}

// Ranking returns the dataset's options ordered by fitted mean utility,
// strongest first
func (s *ProbabilityService) Ranking(ctx context.Context, dataset string) ([]string, error) {
	ps, err := s.parameterSet(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return ps.RankedByMu(), nil
}

// Invalidate drops the cached parameter set for a dataset. Called after a
// refit so the next query sees fresh parameters.
func (s *ProbabilityService) Invalidate(dataset string) {
	s.params.Delete(dataset)
}

// parameterSet returns the latest parameter set for the dataset, from
// cache when possible
func (s *ProbabilityService) parameterSet(ctx context.Context, dataset string) (models.ParameterSet, error) {
	if cached, found := s.params.Get(dataset); found {
		if ps, ok := cached.(models.ParameterSet); ok {
			metrics.RecordParameterCacheHit()
			return ps, nil
		}
	}
	metrics.RecordParameterCacheMiss()

	run, err := s.fitRunRepo.GetLatestByDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("no fit available for dataset %s: %w", dataset, err)
	}

	ps, err := run.ParameterSet()
	if err != nil {
		return nil, err
	}

	s.params.Set(dataset, ps, s.ttl)
	s.log.WithFields(logrus.Fields{
		"dataset": dataset,
		"fit_run": run.ID,
		"options": len(ps),
	}).Debug("Loaded parameter set into cache")

	return ps, nil
}
