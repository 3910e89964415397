package thurstonian

import (
	"math"
	"sort"

	"github.com/yourusername/preference-engine/internal/models"
)

// optionOrder extracts the distinct options from the comparisons in a
// canonical sorted order. The order is fixed once per Fit call and threaded
// through packing, unpacking and the objective.
func optionOrder(comparisons []*models.Comparison) []string {
	seen := make(map[string]bool)
	var options []string
	for _, c := range comparisons {
		for _, option := range []string{c.OptionA, c.OptionB} {
			if !seen[option] {
				seen[option] = true
				options = append(options, option)
			}
		}
	}
	sort.Strings(options)
	return options
}

// indexOf builds the option -> vector-index mapping for a fixed order
func indexOf(order []string) map[string]int {
	index := make(map[string]int, len(order))
	for i, option := range order {
		index[option] = i
	}
	return index
}

// unpackParameters converts a bounded parameter vector (first half mu,
// second half log sigma) back into a per-option parameter set. It is a pure
// transform with no shared state.
func unpackParameters(order []string, x []float64) models.ParameterSet {
	n := len(order)
	ps := make(models.ParameterSet, n)
	for i, option := range order {
		ps[option] = models.Parameters{
			Mu:    x[i],
			Sigma: math.Exp(x[n+i]),
		}
	}
	return ps
}

// boxTransform maps between the optimizer's unconstrained space and the
// box-constrained parameter space via a sigmoid: x = lo + (hi-lo)*s(z).
type boxTransform struct {
	lower []float64
	upper []float64
}

func newBoxTransform(n int, cfg Config) boxTransform {
	t := boxTransform{
		lower: make([]float64, 2*n),
		upper: make([]float64, 2*n),
	}
	for i := 0; i < n; i++ {
		t.lower[i] = -cfg.MuBound
		t.upper[i] = cfg.MuBound
		t.lower[n+i] = cfg.LogSigmaMin
		t.upper[n+i] = cfg.LogSigmaMax
	}
	return t
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// toBounded maps an unconstrained vector into the box
func (t boxTransform) toBounded(z []float64) []float64 {
	x := make([]float64, len(z))
	for i := range z {
		x[i] = t.lower[i] + (t.upper[i]-t.lower[i])*sigmoid(z[i])
	}
	return x
}

// fromBounded inverts toBounded for strictly interior points
func (t boxTransform) fromBounded(x []float64) []float64 {
	z := make([]float64, len(x))
	for i := range x {
		z[i] = math.Log((x[i] - t.lower[i]) / (t.upper[i] - x[i]))
	}
	return z
}

// chainGradient converts a gradient in bounded space into the optimizer's
// unconstrained space: dL/dz = dL/dx * (hi-lo)*s(z)*(1-s(z)).
func (t boxTransform) chainGradient(z, gradX, gradZ []float64) {
	for i := range z {
		s := sigmoid(z[i])
		gradZ[i] = gradX[i] * (t.upper[i] - t.lower[i]) * s * (1 - s)
	}
}
