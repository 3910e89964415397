// Package logger provides estimation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// FitLogger provides dedicated logging for estimation runs.
type FitLogger struct {
	*logrus.Entry
}

// NewFitLogger creates a new fit logger.
func NewFitLogger(baseLogger *logrus.Logger) *FitLogger {
	return &FitLogger{
		Entry: baseLogger.WithField("component", "fit"),
	}
}

// LogFitStarted logs the start of an estimation run.
func (fl *FitLogger) LogFitStarted(dataset string, comparisonCount, optionCount int) {
	fl.WithFields(logrus.Fields{
		"dataset":          dataset,
		"comparison_count": comparisonCount,
		"option_count":     optionCount,
	}).Info("Estimation run started")
}

// LogFitCompleted logs a completed estimation run.
func (fl *FitLogger) LogFitCompleted(dataset string, logLikelihood, crossEntropy float64, converged bool, iterations int, durationSeconds float64) {
	fl.WithFields(logrus.Fields{
		"dataset":        dataset,
		"log_likelihood": logLikelihood,
		"cross_entropy":  crossEntropy,
		"converged":      converged,
		"iterations":     iterations,
		"duration_s":     durationSeconds,
	}).Info("Estimation run completed")
}

// LogConvergenceWarning logs an optimizer that terminated without meeting
// its convergence criterion.
func (fl *FitLogger) LogConvergenceWarning(dataset string, iterations int) {
	fl.WithFields(logrus.Fields{
		"dataset":    dataset,
		"iterations": iterations,
	}).Warn("Optimizer terminated without convergence; parameters may be unreliable")
}

// LogSaturatedOptions logs options whose fitted parameters sit at a bound.
func (fl *FitLogger) LogSaturatedOptions(dataset string, options []string) {
	if len(options) == 0 {
		return
	}
	fl.WithFields(logrus.Fields{
		"dataset": dataset,
		"options": options,
	}).Warn("Options saturated at parameter bounds; likely near-unidentifiable")
}

// LogFitError logs a failed estimation run.
func (fl *FitLogger) LogFitError(dataset string, reason string) {
	fl.WithFields(logrus.Fields{
		"dataset": dataset,
		"reason":  reason,
	}).Error("Estimation run failed")
}
