package models

import (
	"fmt"
	"sort"
)

// Parameters holds the fitted latent utility distribution for one option.
// Mu is the mean utility; Sigma is the perception noise and is always positive.
type Parameters struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma" validate:"gt=0"`
}

// ParameterSet maps option identifiers to their fitted parameters
type ParameterSet map[string]Parameters

// Get retrieves parameters for an option with an explicit presence check
func (ps ParameterSet) Get(option string) (Parameters, error) {
	p, ok := ps[option]
	if !ok {
		return Parameters{}, fmt.Errorf("no parameters for option %q: %w", option, ErrNotFound)
	}
	return p, nil
}

// Options returns the option identifiers in sorted order
func (ps ParameterSet) Options() []string {
	options := make([]string, 0, len(ps))
	for option := range ps {
		options = append(options, option)
	}
	sort.Strings(options)
	return options
}

// RankedByMu returns option identifiers ordered by descending mean utility.
// Ties break on option name for determinism.
func (ps ParameterSet) RankedByMu() []string {
	options := ps.Options()
	sort.SliceStable(options, func(i, j int) bool {
		return ps[options[i]].Mu > ps[options[j]].Mu
	})
	return options
}
