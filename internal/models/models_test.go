package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisonValidate(t *testing.T) {
	tests := []struct {
		name    string
		chosen  string
		wantErr bool
	}{
		{name: "chose first option", chosen: "A", wantErr: false},
		{name: "chose second option", chosen: "B", wantErr: false},
		{name: "chose absent option", chosen: "C", wantErr: true},
		{name: "empty chosen", chosen: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Comparison{OptionA: "A", OptionB: "B", Chosen: tt.chosen}
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				verr, ok := IsValidationError(err)
				require.True(t, ok)
				assert.Equal(t, ValidationMalformedRecord, verr.Kind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestComparisonRejected(t *testing.T) {
	c := &Comparison{OptionA: "A", OptionB: "B", Chosen: "B"}
	assert.False(t, c.ChoseA())
	assert.Equal(t, "A", c.Rejected())
}

func TestParameterSetGetMissing(t *testing.T) {
	ps := ParameterSet{"A": {Mu: 1, Sigma: 0.5}}

	p, err := ps.Get("A")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Mu)

	_, err = ps.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParameterSetRankedByMu(t *testing.T) {
	ps := ParameterSet{
		"low":  {Mu: -1.0, Sigma: 1},
		"high": {Mu: 2.0, Sigma: 1},
		"mid":  {Mu: 0.5, Sigma: 1},
	}
	assert.Equal(t, []string{"high", "mid", "low"}, ps.RankedByMu())
}

func TestFitRunParameterRoundTrip(t *testing.T) {
	run := &FitRun{DatasetName: "taste-test"}
	ps := ParameterSet{"A": {Mu: 0.7, Sigma: 1.1}}

	require.NoError(t, run.SetParameterSet(ps))
	decoded, err := run.ParameterSet()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, decoded["A"].Mu, 1e-12)
	assert.InDelta(t, 1.1, decoded["A"].Sigma, 1e-12)
}
