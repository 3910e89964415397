package thurstonian

import (
	"fmt"
	"math"

	"github.com/yourusername/preference-engine/internal/models"
)

// CrossEntropy returns the mean binary cross-entropy of the observed choices
// under the given parameters. Lower is better; a predictor that always
// answers 0.5 scores ln 2. It is a diagnostic only and is never fed back
// into fitting.
func CrossEntropy(comparisons []*models.Comparison, params models.ParameterSet) (float64, error) {
	if len(comparisons) == 0 {
		return 0, models.NewValidationError(models.ValidationEmptyInput, "no comparisons supplied")
	}

	total := 0.0
	for i, c := range comparisons {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("comparison %d: %w", i, err)
		}
		pA, err := params.Get(c.OptionA)
		if err != nil {
			return 0, fmt.Errorf("comparison %d: %w", i, err)
		}
		pB, err := params.Get(c.OptionB)
		if err != nil {
			return 0, fmt.Errorf("comparison %d: %w", i, err)
		}

		p := clampProbability(Probability(pA.Mu, pB.Mu, pA.Sigma, pB.Sigma))
		if c.ChoseA() {
			total -= math.Log(p)
		} else {
			total -= math.Log(1 - p)
		}
	}

	return total / float64(len(comparisons)), nil
}
