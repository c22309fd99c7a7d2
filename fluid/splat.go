package fluid

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/renderer"
	"github.com/pthm-cable/fluidball/telemetry"
)

// neutralRadius is the Splat radius divisor that leaves SplatRadius as is.
const neutralRadius = 100

// SplatRequest is a queued splat. Radius divides the configured splat
// radius; 100 is neutral and zero means 100.
type SplatRequest struct {
	X, Y   float32
	DX, DY float32
	Color  mgl32.Vec3
	Radius float32
}

// QueueSplat defers a splat to the start of the next Frame.
func (e *Engine) QueueSplat(r SplatRequest) {
	e.queue = append(e.queue, r)
}

func (e *Engine) applyQueue() error {
	if len(e.queue) == 0 {
		return nil
	}
	e.timer.StartPhase(telemetry.PhaseSplat)
	for _, r := range e.queue {
		if err := e.Splat(r.X, r.Y, r.DX, r.DY, r.Color, r.Radius); err != nil {
			e.queue = e.queue[:0]
			return err
		}
	}
	e.queue = e.queue[:0]
	return nil
}

// Splat adds a Gaussian velocity impulse (dx, dy) and a dye impulse color
// centred on (x, y) in normalized coordinates.
func (e *Engine) Splat(x, y, dx, dy float32, color mgl32.Vec3, radius float32) error {
	r := e.splatRadius(radius)
	p := mgl32.Vec2{x, y}
	if err := e.inject(e.fields.velocity, p, mgl32.Vec3{dx, dy, 0}, r, 1); err != nil {
		return err
	}
	return e.inject(e.fields.dye, p, color, r, 1)
}

// SourceDrain pushes (strength > 0) or pulls (strength < 0) on the pressure
// field at (x, y). Sources also emit dye.
func (e *Engine) SourceDrain(x, y, strength float32, color mgl32.Vec3, radius float32) error {
	r := e.splatRadius(radius)
	p := mgl32.Vec2{x, y}
	if err := e.inject(e.fields.pressure, p, mgl32.Vec3{strength, 0, 0}, r, 1); err != nil {
		return err
	}
	if strength > 0 {
		return e.inject(e.fields.dye, p, color, r, 1)
	}
	return nil
}

func (e *Engine) splatRadius(divisor float32) float32 {
	if divisor == 0 {
		divisor = neutralRadius
	}
	return float32(e.cfg.SplatRadius) / divisor
}

// inject writes sourceMult*field + exp(-|p-point|²/radius)*impulse into
// the write half of field and swaps. Distances are aspect corrected so
// splats stay round on a non-square view.
func (e *Engine) inject(field *renderer.DoubleBuffer, point mgl32.Vec2, impulse mgl32.Vec3, radius, sourceMult float32) error {
	sp, err := e.mat.splat.Use()
	if err != nil {
		return err
	}
	e.dev.SetBlend(gpu.BlendNone)
	aspect := e.aspect()
	if aspect > 1 {
		radius *= aspect
	}
	sp.Uniforms.TexelSize.SetVec(field.TexelSize())
	sp.Uniforms.Target.Set(field.Read().Attach(0))
	sp.Uniforms.AspectRatio.Set(aspect)
	sp.Uniforms.Point.SetVec(point)
	sp.Uniforms.Color.SetVec(impulse)
	sp.Uniforms.Radius.Set(radius)
	sp.Uniforms.SourceMult.Set(sourceMult)
	e.ctx.Draw(field.Write())
	field.Swap()
	return nil
}

// RandomSplats adds n splats at random positions with random velocities
// and bright random colours.
func (e *Engine) RandomSplats(rng *rand.Rand, n int) error {
	for range n {
		c := RandomColor(rng).Mul(10)
		x, y := rng.Float32(), rng.Float32()
		dx := 1000 * (rng.Float32() - 0.5)
		dy := 1000 * (rng.Float32() - 0.5)
		if err := e.Splat(x, y, dx, dy, c, 0); err != nil {
			return err
		}
	}
	return nil
}

// RandomColor is a fully saturated colour of random hue, dimmed so that
// repeated splats do not saturate the dye.
func RandomColor(rng *rand.Rand) mgl32.Vec3 {
	return HueColor(rng.Float64() * 360)
}

// HueColor is the dimmed splat colour for a hue in degrees.
func HueColor(hue float64) mgl32.Vec3 {
	c := colorful.Hsv(hue, 1, 1)
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}.Mul(0.15)
}
