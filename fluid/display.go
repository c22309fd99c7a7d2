package fluid

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/renderer"
	"github.com/pthm-cable/fluidball/telemetry"
)

// Render composites the dye, with whichever effects are enabled, into
// target.
func (e *Engine) Render(target renderer.DrawTarget) error {
	f := &e.fields
	if e.cfg.Bloom.Enabled {
		e.timer.StartPhase(telemetry.PhaseBloom)
		if err := e.applyBloom(f.dye.Read(), f.bloom); err != nil {
			return err
		}
	}
	if e.cfg.Sunrays.Enabled {
		e.timer.StartPhase(telemetry.PhaseSunrays)
		// dye.write is free between steps and serves as the mask scratch.
		if err := e.applySunrays(f.dye.Read(), f.dye.Write(), f.sunrays); err != nil {
			return err
		}
		if err := e.blur(f.sunrays, f.sunraysTmp, 1); err != nil {
			return err
		}
	}

	e.timer.StartPhase(telemetry.PhaseDisplay)
	_, toScreen := target.(*renderer.Screen)
	if toScreen || !e.cfg.Transparent {
		e.dev.SetBlend(gpu.BlendPremultiplied)
	} else {
		e.dev.SetBlend(gpu.BlendNone)
	}

	if !e.cfg.Transparent {
		r, g, b := e.cfg.BackColor.Floats()
		if err := e.drawColor(target, mgl32.Vec4{r, g, b, 1}); err != nil {
			return err
		}
	}
	if toScreen && e.cfg.Transparent {
		if err := e.drawCheckerboard(target); err != nil {
			return err
		}
	}
	return e.drawDisplay(target)
}

func (e *Engine) drawColor(target renderer.DrawTarget, c mgl32.Vec4) error {
	v, err := e.mat.color.Use()
	if err != nil {
		return err
	}
	v.Uniforms.Color.SetVec(c)
	e.ctx.Draw(target)
	return nil
}

func (e *Engine) drawCheckerboard(target renderer.DrawTarget) error {
	v, err := e.mat.checkerboard.Use()
	if err != nil {
		return err
	}
	w, h := target.Size()
	v.Uniforms.AspectRatio.Set(float32(w) / float32(h))
	e.ctx.Draw(target)
	return nil
}

func (e *Engine) drawDisplay(target renderer.DrawTarget) error {
	f := &e.fields
	v, err := e.mat.display.Use(displayKeywords(e.cfg)...)
	if err != nil {
		return err
	}
	w, h := target.Size()
	u := v.Uniforms
	u.TexelSize.Set(1/float32(w), 1/float32(h))
	u.Texture.Set(f.dye.Read().Attach(0))
	if e.cfg.Bloom.Enabled {
		u.Bloom.Set(f.bloom.Attach(1))
		e.dev.BindTexture(2, e.dither)
		u.Dithering.Set(2)
		u.DitherScale.Set(float32(w)/float32(e.ditherSize), float32(h)/float32(e.ditherSize))
	}
	if e.cfg.Sunrays.Enabled {
		u.Sunrays.Set(f.sunrays.Attach(3))
	}
	e.ctx.Draw(target)
	return nil
}
