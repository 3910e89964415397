package thurstonian

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/yourusername/preference-engine/internal/models"
)

// Config controls the optimization bounds and termination criteria
type Config struct {
	// MuBound constrains each mean utility to [-MuBound, MuBound]
	MuBound float64
	// LogSigmaMin and LogSigmaMax constrain each log standard deviation
	LogSigmaMin float64
	LogSigmaMax float64
	// MaxIterations bounds the optimizer's major iterations
	MaxIterations int
	// GradientTolerance is the convergence threshold on the gradient norm
	GradientTolerance float64
	// SaturationTolerance is the distance from a bound at which a fitted
	// parameter is reported as saturated
	SaturationTolerance float64
}

// DefaultConfig returns the recommended estimator configuration
func DefaultConfig() Config {
	return Config{
		MuBound:             10.0,
		LogSigmaMin:         -10.0,
		LogSigmaMax:         2.0,
		MaxIterations:       500,
		GradientTolerance:   1e-6,
		SaturationTolerance: 1e-3,
	}
}

// Validate checks the configuration for usable bounds
func (c Config) Validate() error {
	if c.MuBound <= 0 {
		return fmt.Errorf("mu bound must be positive, got %v", c.MuBound)
	}
	if c.LogSigmaMin >= c.LogSigmaMax {
		return fmt.Errorf("log sigma bounds are inverted: [%v, %v]", c.LogSigmaMin, c.LogSigmaMax)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// FitResult holds the output of one estimation run. The parameter set is
// immutable output; callers receive their own copy of all values.
type FitResult struct {
	Parameters      models.ParameterSet
	LogLikelihood   float64
	Converged       bool
	Iterations      int
	FuncEvaluations int

	config Config
}

// SaturatedOptions lists options whose fitted mu or sigma sits at a
// configured bound. A saturated option is usually near-unidentifiable, for
// example one that always wins or always loses.
func (r *FitResult) SaturatedOptions() []string {
	var saturated []string
	tol := r.config.SaturationTolerance
	for _, option := range r.Parameters.Options() {
		p := r.Parameters[option]
		logSigma := math.Log(p.Sigma)
		atBound := math.Abs(math.Abs(p.Mu)-r.config.MuBound) < tol ||
			math.Abs(logSigma-r.config.LogSigmaMin) < tol ||
			math.Abs(logSigma-r.config.LogSigmaMax) < tol
		if atBound {
			saturated = append(saturated, option)
		}
	}
	return saturated
}

// Estimator fits Thurstonian utility parameters by bounded maximum
// likelihood. Fit calls are independent: no state is shared between them.
type Estimator struct {
	cfg Config
}

// NewEstimator creates an estimator with the given configuration
func NewEstimator(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estimator config: %w", err)
	}
	return &Estimator{cfg: cfg}, nil
}

// Fit recovers per-option (mu, sigma) parameters from pairwise comparisons
// by minimizing the negative log-likelihood with a quasi-Newton method.
// Bounds are enforced through a sigmoid reparameterization, which also keeps
// every sigma strictly positive.
//
// A non-converged optimization is not an error: parameters are still
// returned with Converged set to false.
func (e *Estimator) Fit(comparisons []*models.Comparison) (*FitResult, error) {
	if err := validateComparisons(comparisons); err != nil {
		return nil, err
	}

	order := optionOrder(comparisons)
	index := indexOf(order)
	n := len(order)

	obj := objective{
		trials: buildTrials(comparisons, index),
		n:      n,
	}
	transform := newBoxTransform(n, e.cfg)

	// Initial point: mu = 0, log sigma = 0 (sigma = 1), mapped into the
	// optimizer's unconstrained space.
	x0 := make([]float64, 2*n)
	z0 := transform.fromBounded(x0)

	boundedGrad := make([]float64, 2*n)
	problem := optimize.Problem{
		Func: func(z []float64) float64 {
			return obj.value(transform.toBounded(z))
		},
		Grad: func(grad, z []float64) {
			obj.gradient(boundedGrad, transform.toBounded(z))
			transform.chainGradient(z, boundedGrad, grad)
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: e.cfg.GradientTolerance,
		MajorIterations:   e.cfg.MaxIterations,
	}

	result, err := optimize.Minimize(problem, z0, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	fitted := transform.toBounded(result.X)
	return &FitResult{
		Parameters:      unpackParameters(order, fitted),
		LogLikelihood:   -result.F,
		Converged:       err == nil && converged(result.Status),
		Iterations:      result.Stats.MajorIterations,
		FuncEvaluations: result.Stats.FuncEvaluations,
		config:          e.cfg,
	}, nil
}

// converged reports whether the optimizer terminated by satisfying a
// convergence criterion rather than hitting an iteration or runtime limit
func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.StepConvergence, optimize.MethodConverge:
		return true
	default:
		return false
	}
}

// validateComparisons enforces the estimator preconditions: non-empty data,
// at least two distinct options, and every chosen value matching one of the
// two presented options.
func validateComparisons(comparisons []*models.Comparison) error {
	if len(comparisons) == 0 {
		return models.NewValidationError(models.ValidationEmptyInput, "no comparisons supplied")
	}
	for i, c := range comparisons {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("comparison %d: %w", i, err)
		}
	}
	if len(optionOrder(comparisons)) < 2 {
		return models.NewValidationError(models.ValidationInsufficientOptions,
			"at least 2 distinct options are required")
	}
	return nil
}
