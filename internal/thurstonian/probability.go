// Package thurstonian estimates latent preference parameters from
// pairwise-comparison choice data. Each option carries a Gaussian latent
// utility N(mu, sigma^2); an observed choice is modeled as a comparison of
// independent draws from the two presented options' distributions.
//
// Absolute mu/sigma values carry a location/scale ambiguity inherent to
// Thurstonian models. Fitting constrains parameters to fixed bounds instead
// of resolving the ambiguity, so fitted values are meaningful relative to
// those bounds and the zero initialization, not on an absolute scale.
package thurstonian

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// epsilon guards divisions and logarithms against degenerate values
const epsilon = 1e-10

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Probability returns the probability that a random draw from X's utility
// distribution exceeds a random draw from Y's, under independent Gaussian
// utilities: Phi((muX - muY) / sqrt(sigmaX^2 + sigmaY^2)).
func Probability(muX, muY, sigmaX, sigmaY float64) float64 {
	scale := math.Sqrt(sigmaX*sigmaX+sigmaY*sigmaY) + epsilon
	return stdNormal.CDF((muX - muY) / scale)
}

// clampProbability keeps p inside [epsilon, 1-epsilon] so that log(p) and
// log(1-p) stay finite and non-positive. Clamping instead of adding epsilon
// keeps log-loss terms non-negative when p saturates at 0 or 1.
func clampProbability(p float64) float64 {
	if p < epsilon {
		return epsilon
	}
	if p > 1-epsilon {
		return 1 - epsilon
	}
	return p
}
