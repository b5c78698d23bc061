// Package main provides a birth-rate calibration tool: given a recorded
// fluid frame and a target newborn count, it searches the birth-rate
// coefficients kta/kwc that reproduce that count.
package main

import "github.com/foamkit/diffuse/config"

// ParamSpec defines a single optimizable coefficient and its search bounds.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of coefficients under search.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the birth-rate coefficients (spec.md §4.4's kta/kwc)
// as the calibration target. Bounds are wide enough to cover art-directed
// foam densities far outside the shipped defaults.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "birth.k_ta", Min: 50, Max: 40000, Default: 4000},
			{Name: "birth.k_wc", Min: 50, Max: 40000, Default: 4000},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	n := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		n[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return n
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds v to each spec's [Min,Max].
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes the (clamped) parameter values into cfg.Birth.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Birth.KTA = clamped[0]
	cfg.Birth.KWC = clamped[1]
}
