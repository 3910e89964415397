package thurstonian

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/preference-engine/internal/models"
)

func comparison(a, b, chosen string) *models.Comparison {
	return &models.Comparison{OptionA: a, OptionB: b, Chosen: chosen}
}

// syntheticComparisons generates perPair observations for every option pair,
// splitting wins according to the model probability of the true parameters.
func syntheticComparisons(truth models.ParameterSet, perPair int) []*models.Comparison {
	options := truth.Options()
	var data []*models.Comparison
	for i := 0; i < len(options); i++ {
		for j := i + 1; j < len(options); j++ {
			a, b := options[i], options[j]
			pa, pb := truth[a], truth[b]
			p := Probability(pa.Mu, pb.Mu, pa.Sigma, pb.Sigma)
			winsA := int(math.Round(p * float64(perPair)))
			for k := 0; k < perPair; k++ {
				chosen := b
				if k < winsA {
					chosen = a
				}
				data = append(data, comparison(a, b, chosen))
			}
		}
	}
	return data
}

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	est, err := NewEstimator(DefaultConfig())
	require.NoError(t, err)
	return est
}

func TestFitRejectsEmptyInput(t *testing.T) {
	est := newTestEstimator(t)
	_, err := est.Fit(nil)
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, models.ValidationEmptyInput, verr.Kind)
}

func TestFitRejectsSingleOption(t *testing.T) {
	est := newTestEstimator(t)
	_, err := est.Fit([]*models.Comparison{comparison("A", "A", "A")})
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, models.ValidationInsufficientOptions, verr.Kind)
}

func TestFitRejectsMalformedRecord(t *testing.T) {
	est := newTestEstimator(t)
	data := []*models.Comparison{
		comparison("A", "B", "A"),
		comparison("A", "B", "C"),
	}
	_, err := est.Fit(data)
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, models.ValidationMalformedRecord, verr.Kind)
}

func TestFitEndToEndScenario(t *testing.T) {
	// Ten choices over {A, B, C}: B dominates C, C dominates A, with one
	// upset of A over B. Expected mean ordering: B > C > A.
	data := []*models.Comparison{
		comparison("A", "B", "B"),
		comparison("B", "A", "B"),
		comparison("A", "B", "B"),
		comparison("B", "C", "B"),
		comparison("C", "B", "B"),
		comparison("B", "C", "B"),
		comparison("C", "A", "C"),
		comparison("A", "C", "C"),
		comparison("C", "A", "C"),
		comparison("A", "B", "A"),
	}

	est := newTestEstimator(t)
	result, err := est.Fit(data)
	require.NoError(t, err)
	require.Len(t, result.Parameters, 3)

	for _, option := range []string{"A", "B", "C"} {
		p, err := result.Parameters.Get(option)
		require.NoError(t, err)
		assert.Greater(t, p.Sigma, 0.0)
	}

	assert.Greater(t, result.Parameters["B"].Mu, result.Parameters["C"].Mu)
	assert.Greater(t, result.Parameters["C"].Mu, result.Parameters["A"].Mu)

	ce, err := CrossEntropy(data, result.Parameters)
	require.NoError(t, err)
	assert.Greater(t, ce, 0.0)
	assert.Less(t, ce, math.Ln2, "fitted cross-entropy must beat the uniform predictor")
}

func TestFitRecoversOrdinalRanking(t *testing.T) {
	truth := models.ParameterSet{
		"alpha": {Mu: 1.5, Sigma: 1.0},
		"beta":  {Mu: 0.0, Sigma: 1.0},
		"gamma": {Mu: -1.5, Sigma: 1.0},
	}
	data := syntheticComparisons(truth, 200)

	est := newTestEstimator(t)
	result, err := est.Fit(data)
	require.NoError(t, err)

	ranked := result.Parameters.RankedByMu()
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, ranked)

	ce, err := CrossEntropy(data, result.Parameters)
	require.NoError(t, err)
	assert.Less(t, ce, math.Ln2)
}

func TestFitMatchesRawFrequencyOnDensePair(t *testing.T) {
	// 100 direct observations between X and Y, 80 won by X. The model
	// probability should land near the empirical 0.8 win rate.
	var data []*models.Comparison
	for i := 0; i < 100; i++ {
		chosen := "Y"
		if i < 80 {
			chosen = "X"
		}
		data = append(data, comparison("X", "Y", chosen))
	}

	est := newTestEstimator(t)
	result, err := est.Fit(data)
	require.NoError(t, err)

	px := result.Parameters["X"]
	py := result.Parameters["Y"]
	p := Probability(px.Mu, py.Mu, px.Sigma, py.Sigma)
	assert.InDelta(t, 0.8, p, 0.05)
}

func TestFitIsDeterministic(t *testing.T) {
	data := []*models.Comparison{
		comparison("A", "B", "A"),
		comparison("B", "C", "B"),
		comparison("A", "C", "A"),
		comparison("C", "A", "A"),
	}

	est := newTestEstimator(t)
	first, err := est.Fit(data)
	require.NoError(t, err)
	second, err := est.Fit(data)
	require.NoError(t, err)

	for option, p := range first.Parameters {
		q := second.Parameters[option]
		assert.InDelta(t, p.Mu, q.Mu, 1e-12)
		assert.InDelta(t, p.Sigma, q.Sigma, 1e-12)
	}
}

func TestSaturatedOptionsDetection(t *testing.T) {
	cfg := DefaultConfig()
	result := &FitResult{
		Parameters: models.ParameterSet{
			"pinned": {Mu: cfg.MuBound, Sigma: 1.0},
			"floor":  {Mu: 0.0, Sigma: math.Exp(cfg.LogSigmaMin)},
			"free":   {Mu: 0.3, Sigma: 1.2},
		},
		config: cfg,
	}

	saturated := result.SaturatedOptions()
	assert.ElementsMatch(t, []string{"pinned", "floor"}, saturated)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "non-positive mu bound", mutate: func(c *Config) { c.MuBound = 0 }, wantErr: true},
		{name: "inverted sigma bounds", mutate: func(c *Config) { c.LogSigmaMin = 3 }, wantErr: true},
		{name: "zero iterations", mutate: func(c *Config) { c.MaxIterations = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewEstimator(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
