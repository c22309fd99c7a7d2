package fluid

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/renderer"
)

// bloomCurve is the soft-threshold knee of the prefilter.
func bloomCurve(threshold, softKnee float32) mgl32.Vec3 {
	knee := threshold*softKnee + 0.0001
	return mgl32.Vec3{threshold - knee, knee * 2, 0.25 / knee}
}

// applyBloom extracts the bright parts of source, blurs them down the
// chain and back up, and writes the result to dst. A chain shorter than
// two levels leaves dst untouched.
func (e *Engine) applyBloom(source, dst *renderer.RenderTarget) error {
	chain := e.fields.bloomChain
	if len(chain) < 2 {
		return nil
	}
	e.dev.SetBlend(gpu.BlendNone)

	pre, err := e.mat.bloomPrefilter.Use()
	if err != nil {
		return err
	}
	threshold := float32(e.cfg.Bloom.Threshold)
	pre.Uniforms.TexelSize.SetVec(source.TexelSize())
	pre.Uniforms.Curve.SetVec(bloomCurve(threshold, float32(e.cfg.Bloom.SoftKnee)))
	pre.Uniforms.Threshold.Set(threshold)
	pre.Uniforms.Texture.Set(source.Attach(0))
	e.ctx.Draw(dst)

	blur, err := e.mat.bloomBlur.Use()
	if err != nil {
		return err
	}
	last := dst
	for _, level := range chain {
		blur.Uniforms.TexelSize.SetVec(last.TexelSize())
		blur.Uniforms.Texture.Set(last.Attach(0))
		e.ctx.Draw(level)
		last = level
	}

	e.dev.SetBlend(gpu.BlendAdditive)
	for i := len(chain) - 2; i >= 0; i-- {
		base := chain[i]
		blur.Uniforms.TexelSize.SetVec(last.TexelSize())
		blur.Uniforms.Texture.Set(last.Attach(0))
		e.ctx.Draw(base)
		last = base
	}
	e.dev.SetBlend(gpu.BlendNone)

	final, err := e.mat.bloomFinal.Use()
	if err != nil {
		return err
	}
	final.Uniforms.TexelSize.SetVec(last.TexelSize())
	final.Uniforms.Texture.Set(last.Attach(0))
	final.Uniforms.Intensity.Set(float32(e.cfg.Bloom.Intensity))
	e.ctx.Draw(dst)
	return nil
}

// applySunrays writes a luminance mask of source into mask's alpha, then
// marches rays from every texel toward the focus into dst.
func (e *Engine) applySunrays(source, mask, dst *renderer.RenderTarget) error {
	e.dev.SetBlend(gpu.BlendNone)

	m, err := e.mat.sunraysMask.Use()
	if err != nil {
		return err
	}
	m.Uniforms.TexelSize.SetVec(source.TexelSize())
	m.Uniforms.Texture.Set(source.Attach(0))
	e.ctx.Draw(mask)

	s, err := e.mat.sunrays.Use()
	if err != nil {
		return err
	}
	s.Uniforms.TexelSize.SetVec(mask.TexelSize())
	s.Uniforms.Weight.Set(float32(e.cfg.Sunrays.Weight))
	s.Uniforms.Center.SetVec(e.focus)
	s.Uniforms.Texture.Set(mask.Attach(0))
	e.ctx.Draw(dst)
	return nil
}

// blur runs separable Gaussian passes over target, using temp for the
// horizontal half.
func (e *Engine) blur(target, temp *renderer.RenderTarget, iterations int) error {
	b, err := e.mat.blur.Use()
	if err != nil {
		return err
	}
	ts := target.TexelSize()
	for range iterations {
		b.Uniforms.TexelSize.Set(ts.X(), 0)
		b.Uniforms.Texture.Set(target.Attach(0))
		e.ctx.Draw(temp)

		b.Uniforms.TexelSize.Set(0, ts.Y())
		b.Uniforms.Texture.Set(temp.Attach(0))
		e.ctx.Draw(target)
	}
	return nil
}
