package main

import (
	"github.com/pthm-cable/fluidball/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable fluid parameters.
// Bounds follow the tunables panel.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "density_dissipation", Path: "fluid.density_dissipation", Min: 0, Max: 4, Default: 1},
			{Name: "velocity_dissipation", Path: "fluid.velocity_dissipation", Min: 0, Max: 4, Default: 0.2},
			{Name: "pressure", Path: "fluid.pressure", Min: 0, Max: 1, Default: 0.8},
			{Name: "curl", Path: "fluid.curl", Min: 0, Max: 50, Default: 30},
			{Name: "splat_radius", Path: "fluid.splat_radius", Min: 0.01, Max: 1, Default: 0.25},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(v[i], spec.Max))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	f := &cfg.Fluid
	f.DensityDissipation = clamped[0]
	f.VelocityDissipation = clamped[1]
	f.Pressure = clamped[2]
	f.Curl = clamped[3]
	// splat_radius must stay positive; Clamp keeps it at or above 0.01.
	f.SplatRadius = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	f := cfg.Fluid
	return []float64{
		f.DensityDissipation,
		f.VelocityDissipation,
		f.Pressure,
		f.Curl,
		f.SplatRadius,
	}
}
