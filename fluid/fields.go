package fluid

import (
	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/renderer"
)

// fields is the simulation state plus the post-processing targets.
type fields struct {
	velocity   *renderer.DoubleBuffer // RG, sim grid
	dye        *renderer.DoubleBuffer // RGBA, dye grid
	pressure   *renderer.DoubleBuffer // R, sim grid
	divergence *renderer.RenderTarget // R, sim grid
	curl       *renderer.RenderTarget // R, sim grid

	bloom      *renderer.RenderTarget
	bloomChain []*renderer.RenderTarget
	sunrays    *renderer.RenderTarget
	sunraysTmp *renderer.RenderTarget
}

func (f *fields) init(ctx *renderer.Context, cfg config.FluidConfig, viewW, viewH int) error {
	caps := ctx.Caps()
	filter := fieldFilter(caps)
	simW, simH := renderer.Resolution(viewW, viewH, cfg.SimResolution)
	dyeW, dyeH := renderer.Resolution(viewW, viewH, cfg.DyeResolution)

	var err error
	if f.dye, err = ctx.CreateDouble(dyeW, dyeH, caps.RGBA, filter); err != nil {
		return err
	}
	if f.velocity, err = ctx.CreateDouble(simW, simH, caps.RG, filter); err != nil {
		return err
	}
	if err := f.initSolver(ctx, simW, simH); err != nil {
		return err
	}
	if err := f.initBloom(ctx, cfg, viewW, viewH); err != nil {
		return err
	}
	return f.initSunrays(ctx, cfg, viewW, viewH)
}

// initSolver (re)allocates the scratch fields of the pressure solve.
func (f *fields) initSolver(ctx *renderer.Context, w, h int) error {
	caps := ctx.Caps()
	f.pressure.Release()
	f.pressure = nil
	f.divergence.Release()
	f.divergence = nil
	f.curl.Release()
	f.curl = nil

	var err error
	if f.divergence, err = ctx.Create(w, h, caps.R, gpu.FilterNearest); err != nil {
		return err
	}
	if f.curl, err = ctx.Create(w, h, caps.R, gpu.FilterNearest); err != nil {
		return err
	}
	f.pressure, err = ctx.CreateDouble(w, h, caps.R, gpu.FilterNearest)
	return err
}

// resize resamples velocity and dye into the new grid sizes and
// reallocates everything else empty.
func (f *fields) resize(ctx *renderer.Context, cfg config.FluidConfig, viewW, viewH int) error {
	simW, simH := renderer.Resolution(viewW, viewH, cfg.SimResolution)
	dyeW, dyeH := renderer.Resolution(viewW, viewH, cfg.DyeResolution)

	if err := ctx.ResizeDouble(f.dye, dyeW, dyeH); err != nil {
		return err
	}
	if err := ctx.ResizeDouble(f.velocity, simW, simH); err != nil {
		return err
	}
	if f.pressure.Width() != simW || f.pressure.Height() != simH {
		if err := f.initSolver(ctx, simW, simH); err != nil {
			return err
		}
	}
	if err := f.initBloom(ctx, cfg, viewW, viewH); err != nil {
		return err
	}
	return f.initSunrays(ctx, cfg, viewW, viewH)
}

// bloomLevels sizes the downsample chain: level i is the bloom target
// halved i+1 times, stopping before a side drops under 2 texels.
func bloomLevels(w, h, iterations int) [][2]int {
	var levels [][2]int
	for i := range iterations {
		lw, lh := w>>(i+1), h>>(i+1)
		if lw < 2 || lh < 2 {
			break
		}
		levels = append(levels, [2]int{lw, lh})
	}
	return levels
}

func (f *fields) initBloom(ctx *renderer.Context, cfg config.FluidConfig, viewW, viewH int) error {
	caps := ctx.Caps()
	filter := fieldFilter(caps)
	w, h := renderer.Resolution(viewW, viewH, cfg.Bloom.Resolution)

	f.releaseBloom()
	var err error
	if f.bloom, err = ctx.Create(w, h, caps.RGBA, filter); err != nil {
		return err
	}
	for _, size := range bloomLevels(w, h, cfg.Bloom.Iterations) {
		level, err := ctx.Create(size[0], size[1], caps.RGBA, filter)
		if err != nil {
			return err
		}
		f.bloomChain = append(f.bloomChain, level)
	}
	return nil
}

func (f *fields) initSunrays(ctx *renderer.Context, cfg config.FluidConfig, viewW, viewH int) error {
	caps := ctx.Caps()
	filter := fieldFilter(caps)
	w, h := renderer.Resolution(viewW, viewH, cfg.Sunrays.Resolution)

	var err error
	if f.sunrays != nil {
		if f.sunrays, err = ctx.Resize(f.sunrays, w, h); err != nil {
			return err
		}
		f.sunraysTmp, err = ctx.Resize(f.sunraysTmp, w, h)
		return err
	}
	if f.sunrays, err = ctx.Create(w, h, caps.R, filter); err != nil {
		return err
	}
	f.sunraysTmp, err = ctx.Create(w, h, caps.R, filter)
	return err
}

func (f *fields) releaseBloom() {
	f.bloom.Release()
	f.bloom = nil
	for _, level := range f.bloomChain {
		level.Release()
	}
	f.bloomChain = nil
}

func (f *fields) release() {
	f.velocity.Release()
	f.dye.Release()
	f.pressure.Release()
	f.divergence.Release()
	f.curl.Release()
	f.releaseBloom()
	f.sunrays.Release()
	f.sunraysTmp.Release()
}
