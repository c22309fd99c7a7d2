package fluid

import (
	"log/slog"

	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/gpu"
)

// maxUnfilteredDye caps the dye grid when the field format cannot be
// linearly filtered and advection falls back to manual bilerp.
const maxUnfilteredDye = 512

// applyFilteringPolicy returns cfg adjusted to the device: without linear
// filtering the dye grid is capped and the effects that depend on smooth
// sampling are switched off.
func applyFilteringPolicy(cfg config.FluidConfig, caps gpu.Capabilities, log *slog.Logger) config.FluidConfig {
	if caps.LinearFiltering {
		return cfg
	}
	cfg.DyeResolution = min(cfg.DyeResolution, maxUnfilteredDye)
	cfg.Shading = false
	cfg.Bloom.Enabled = false
	cfg.Sunrays.Enabled = false
	log.Warn("linear filtering unavailable, reducing quality",
		"format", caps.RGBA.String(),
		"dye_resolution", cfg.DyeResolution,
	)
	return cfg
}

// fieldFilter is the sampling filter for every field texture.
func fieldFilter(caps gpu.Capabilities) gpu.Filter {
	if caps.LinearFiltering {
		return gpu.FilterLinear
	}
	return gpu.FilterNearest
}
