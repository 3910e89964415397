// Package metrics provides the centralized Prometheus metrics registry for
// the preference engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "preference_engine"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fits_total",
		Help:      "Total number of estimation runs",
	}, []string{"dataset"})
	FitFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fit_failures_total",
		Help:      "Total number of failed estimation runs",
	}, []string{"dataset"})
	ComparisonsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comparisons_ingested_total",
		Help:      "Total number of comparison records ingested",
	}, []string{"source"})
	IngestRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rejects_total",
		Help:      "Total number of comparison records rejected during ingestion",
	}, []string{"source"})
	ProbabilityQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "probability_queries_total",
		Help:      "Total number of pairwise probability queries answered",
	})
	ParameterCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parameter_cache_hits_total",
		Help:      "Total number of parameter cache hits",
	})
	ParameterCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parameter_cache_misses_total",
		Help:      "Total number of parameter cache misses",
	})
)

// Gauge metrics
var (
	LastFitLogLikelihood = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_fit_log_likelihood",
		Help:      "Log-likelihood achieved by the most recent fit per dataset",
	}, []string{"dataset"})
	LastFitCrossEntropy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_fit_cross_entropy",
		Help:      "Mean cross-entropy of the most recent fit per dataset",
	}, []string{"dataset"})
	LastFitOptionCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_fit_option_count",
		Help:      "Number of distinct options in the most recent fit per dataset",
	}, []string{"dataset"})
	FitConverged = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fit_converged",
		Help:      "Whether the most recent fit converged (1) or not (0) per dataset",
	}, []string{"dataset"})
)

// Histogram metrics
var (
	FitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fit_duration_seconds",
		Help:      "Duration of estimation runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
	ProbabilityQueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "probability_query_duration_seconds",
		Help:      "Latency of pairwise probability queries in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FitsTotal)
		registry.MustRegister(FitFailuresTotal)
		registry.MustRegister(ComparisonsIngestedTotal)
		registry.MustRegister(IngestRejectsTotal)
		registry.MustRegister(ProbabilityQueriesTotal)
		registry.MustRegister(ParameterCacheHitsTotal)
		registry.MustRegister(ParameterCacheMissesTotal)

		registry.MustRegister(LastFitLogLikelihood)
		registry.MustRegister(LastFitCrossEntropy)
		registry.MustRegister(LastFitOptionCount)
		registry.MustRegister(FitConverged)

		registry.MustRegister(FitDuration)
		registry.MustRegister(ProbabilityQueryDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFit records a completed estimation run.
func RecordFit(dataset string, durationSeconds, logLikelihood, crossEntropy float64, optionCount int, converged bool) {
	FitsTotal.WithLabelValues(dataset).Inc()
	FitDuration.Observe(durationSeconds)
	LastFitLogLikelihood.WithLabelValues(dataset).Set(logLikelihood)
	LastFitCrossEntropy.WithLabelValues(dataset).Set(crossEntropy)
	LastFitOptionCount.WithLabelValues(dataset).Set(float64(optionCount))
	if converged {
		FitConverged.WithLabelValues(dataset).Set(1)
	} else {
		FitConverged.WithLabelValues(dataset).Set(0)
	}
}

// RecordFitFailure records a failed estimation run.
func RecordFitFailure(dataset string) {
	FitFailuresTotal.WithLabelValues(dataset).Inc()
}

// RecordIngestion records ingested and rejected comparison counts for a source.
func RecordIngestion(source string, ingested, rejected int) {
	ComparisonsIngestedTotal.WithLabelValues(source).Add(float64(ingested))
	IngestRejectsTotal.WithLabelValues(source).Add(float64(rejected))
}

// RecordProbabilityQuery records an answered pairwise probability query.
func RecordProbabilityQuery(durationSeconds float64) {
	ProbabilityQueriesTotal.Inc()
	ProbabilityQueryDuration.Observe(durationSeconds)
}

// RecordParameterCacheHit records a parameter cache hit.
func RecordParameterCacheHit() {
	ParameterCacheHitsTotal.Inc()
}

// RecordParameterCacheMiss records a parameter cache miss.
func RecordParameterCacheMiss() {
	ParameterCacheMissesTotal.Inc()
}
