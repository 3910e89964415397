package thurstonian

import (
	"math"

	"github.com/yourusername/preference-engine/internal/models"
)

// trial is one comparison resolved to vector indices
type trial struct {
	a      int
	b      int
	choseA bool
}

func buildTrials(comparisons []*models.Comparison, index map[string]int) []trial {
	trials := make([]trial, len(comparisons))
	for i, c := range comparisons {
		trials[i] = trial{
			a:      index[c.OptionA],
			b:      index[c.OptionB],
			choseA: c.ChoseA(),
		}
	}
	return trials
}

// objective evaluates the negative total log-likelihood of the observed
// choices for a bounded parameter vector x (first half mu, second half
// log sigma). It is a pure function of its inputs.
type objective struct {
	trials []trial
	n      int
}

func (o objective) value(x []float64) float64 {
	total := 0.0
	for _, t := range o.trials {
		z, _, _ := o.standardize(x, t)
		p := clampProbability(stdNormal.CDF(z))
		if t.choseA {
			total -= math.Log(p)
		} else {
			total -= math.Log(1 - p)
		}
	}
	return total
}

// gradient accumulates the analytic gradient of the negative log-likelihood
// into grad, which must have length 2*n.
func (o objective) gradient(grad, x []float64) {
	for i := range grad {
		grad[i] = 0
	}
	for _, t := range o.trials {
		z, scale, noise := o.standardize(x, t)
		p := clampProbability(stdNormal.CDF(z))
		density := stdNormal.Prob(z)

		// dL/dz for the chosen outcome
		var dLdz float64
		if t.choseA {
			dLdz = -density / p
		} else {
			dLdz = density / (1 - p)
		}

		// z = (muA - muB) / scale
		grad[t.a] += dLdz / scale
		grad[t.b] -= dLdz / scale

		// With v = log sigma: dz/dv = -z * sigma^2 / (scale * noise)
		sigmaA := math.Exp(x[o.n+t.a])
		sigmaB := math.Exp(x[o.n+t.b])
		grad[o.n+t.a] += dLdz * (-z * sigmaA * sigmaA / (scale * noise))
		grad[o.n+t.b] += dLdz * (-z * sigmaB * sigmaB / (scale * noise))
	}
}

// standardize computes z = (muA - muB) / (sqrt(sigmaA^2 + sigmaB^2) + eps)
// and returns the smoothed scale and the raw combined noise.
func (o objective) standardize(x []float64, t trial) (z, scale, noise float64) {
	d := x[t.a] - x[t.b]
	sigmaA := math.Exp(x[o.n+t.a])
	sigmaB := math.Exp(x[o.n+t.b])
	noise = math.Sqrt(sigmaA*sigmaA + sigmaB*sigmaB)
	scale = noise + epsilon
	return d / scale, scale, noise
}
