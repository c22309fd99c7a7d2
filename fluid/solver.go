package fluid

import (
	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/shaders"
	"github.com/pthm-cable/fluidball/telemetry"
)

// Step advances the simulation by dt seconds. Passes run in a fixed order:
// curl, vorticity confinement, divergence, pressure solve, gradient
// subtraction, then advection of velocity and dye.
//
// dt is not clamped against the grid spacing. Large frame gaps can move
// the semi-Lagrangian back-trace several cells in one step.
func (e *Engine) Step(dt float32) error {
	f := &e.fields
	e.dev.SetBlend(gpu.BlendNone)
	texel := f.velocity.TexelSize()

	e.timer.StartPhase(telemetry.PhaseCurl)
	curl, err := e.mat.curl.Use()
	if err != nil {
		return err
	}
	curl.Uniforms.TexelSize.SetVec(texel)
	curl.Uniforms.Velocity.Set(f.velocity.Read().Attach(0))
	e.ctx.Draw(f.curl)

	e.timer.StartPhase(telemetry.PhaseVorticity)
	vort, err := e.mat.vorticity.Use()
	if err != nil {
		return err
	}
	vort.Uniforms.TexelSize.SetVec(texel)
	vort.Uniforms.Velocity.Set(f.velocity.Read().Attach(0))
	vort.Uniforms.Curl.Set(f.curl.Attach(1))
	vort.Uniforms.CurlStrength.Set(float32(e.cfg.Curl))
	vort.Uniforms.DT.Set(dt)
	e.ctx.Draw(f.velocity.Write())
	f.velocity.Swap()

	e.timer.StartPhase(telemetry.PhaseDivergence)
	div, err := e.mat.divergence.Use()
	if err != nil {
		return err
	}
	div.Uniforms.TexelSize.SetVec(texel)
	div.Uniforms.Velocity.Set(f.velocity.Read().Attach(0))
	e.ctx.Draw(f.divergence)

	e.timer.StartPhase(telemetry.PhasePressure)
	// Last frame's pressure, decayed, seeds the Jacobi iteration.
	if err := e.ctx.Blit(f.pressure.Read(), f.pressure.Write(), float32(e.cfg.Pressure)); err != nil {
		return err
	}
	f.pressure.Swap()

	pr, err := e.mat.pressure.Use()
	if err != nil {
		return err
	}
	pr.Uniforms.TexelSize.SetVec(texel)
	pr.Uniforms.Divergence.Set(f.divergence.Attach(0))
	for range e.cfg.PressureIterations {
		pr.Uniforms.Pressure.Set(f.pressure.Read().Attach(1))
		e.ctx.Draw(f.pressure.Write())
		f.pressure.Swap()
	}

	e.timer.StartPhase(telemetry.PhaseGradient)
	grad, err := e.mat.gradientSubtract.Use()
	if err != nil {
		return err
	}
	grad.Uniforms.TexelSize.SetVec(texel)
	grad.Uniforms.Pressure.Set(f.pressure.Read().Attach(0))
	grad.Uniforms.Velocity.Set(f.velocity.Read().Attach(1))
	e.ctx.Draw(f.velocity.Write())
	f.velocity.Swap()

	e.timer.StartPhase(telemetry.PhaseAdvection)
	return e.advect(dt)
}

func (e *Engine) advect(dt float32) error {
	f := &e.fields
	var kw []string
	manual := !e.caps.LinearFiltering
	if manual {
		kw = append(kw, shaders.KeywordManualFiltering)
	}
	adv, err := e.mat.advection.Use(kw...)
	if err != nil {
		return err
	}

	texel := f.velocity.TexelSize()
	adv.Uniforms.TexelSize.SetVec(texel)
	if manual {
		adv.Uniforms.DyeTexelSize.SetVec(texel)
	}
	vel := f.velocity.Read().Attach(0)
	adv.Uniforms.Velocity.Set(vel)
	adv.Uniforms.Source.Set(vel)
	adv.Uniforms.DT.Set(dt)
	adv.Uniforms.Dissipation.Set(float32(e.cfg.VelocityDissipation))
	e.ctx.Draw(f.velocity.Write())
	f.velocity.Swap()

	if manual {
		adv.Uniforms.DyeTexelSize.SetVec(f.dye.TexelSize())
	}
	adv.Uniforms.Velocity.Set(f.velocity.Read().Attach(0))
	adv.Uniforms.Source.Set(f.dye.Read().Attach(1))
	adv.Uniforms.Dissipation.Set(float32(e.cfg.DensityDissipation))
	e.ctx.Draw(f.dye.Write())
	f.dye.Swap()
	return nil
}
