package thurstonian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/yourusername/preference-engine/internal/models"
)

func TestObjectiveGradientMatchesFiniteDifference(t *testing.T) {
	data := []*models.Comparison{
		comparison("A", "B", "A"),
		comparison("B", "C", "C"),
		comparison("A", "C", "A"),
		comparison("C", "B", "C"),
		comparison("B", "A", "B"),
	}
	order := optionOrder(data)
	obj := objective{
		trials: buildTrials(data, indexOf(order)),
		n:      len(order),
	}

	// A few interior points: mu then log sigma per option
	points := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{0.5, -0.3, 1.2, 0.1, -0.4, 0.2},
		{-2.0, 1.0, 0.0, -1.0, 0.5, -0.5},
	}

	for _, x := range points {
		analytic := make([]float64, len(x))
		obj.gradient(analytic, x)

		numeric := fd.Gradient(nil, obj.value, x, nil)
		for i := range x {
			assert.InDelta(t, numeric[i], analytic[i], 1e-5,
				"gradient component %d at %v", i, x)
		}
	}
}

func TestObjectiveValueDecreasesTowardObservedWinner(t *testing.T) {
	data := []*models.Comparison{comparison("A", "B", "A")}
	order := optionOrder(data)
	obj := objective{trials: buildTrials(data, indexOf(order)), n: 2}

	neutral := obj.value([]float64{0, 0, 0, 0})
	favoringWinner := obj.value([]float64{1, -1, 0, 0})
	favoringLoser := obj.value([]float64{-1, 1, 0, 0})

	assert.Less(t, favoringWinner, neutral)
	assert.Greater(t, favoringLoser, neutral)
}

func TestBoxTransformRoundTrip(t *testing.T) {
	transform := newBoxTransform(2, DefaultConfig())
	x := []float64{3.5, -7.2, 0.0, 1.5}

	z := transform.fromBounded(x)
	back := transform.toBounded(z)
	for i := range x {
		assert.InDelta(t, x[i], back[i], 1e-9)
	}
}

func TestBoxTransformStaysInsideBounds(t *testing.T) {
	cfg := DefaultConfig()
	transform := newBoxTransform(1, cfg)

	for _, z := range [][]float64{{-50, 50}, {1e6, -1e6}, {0, 0}} {
		x := transform.toBounded(z)
		require.Len(t, x, 2)
		assert.GreaterOrEqual(t, x[0], -cfg.MuBound)
		assert.LessOrEqual(t, x[0], cfg.MuBound)
		assert.GreaterOrEqual(t, x[1], cfg.LogSigmaMin)
		assert.LessOrEqual(t, x[1], cfg.LogSigmaMax)
	}
}

func TestOptionOrderIsSortedAndDistinct(t *testing.T) {
	data := []*models.Comparison{
		comparison("zeta", "alpha", "zeta"),
		comparison("mid", "zeta", "mid"),
		comparison("alpha", "mid", "alpha"),
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, optionOrder(data))
}
