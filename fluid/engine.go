// Package fluid is a GPU stable-fluids solver with bloom and sunrays
// post-processing. All state lives on a gpu.Device; the Engine owns every
// field and program and must be driven from the goroutine that owns the
// device.
package fluid

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/renderer"
	"github.com/pthm-cable/fluidball/shaders"
)

// PhaseTimer receives the name of each pass as it starts.
type PhaseTimer interface {
	StartPhase(phase string)
}

type noopTimer struct{}

func (noopTimer) StartPhase(string) {}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPhaseTimer reports pass boundaries to t.
func WithPhaseTimer(t PhaseTimer) Option {
	return func(e *Engine) { e.timer = t }
}

// WithViewport sets the initial view size the fields are shaped for.
// Without it fields start square until the first Resize.
func WithViewport(w, h int) Option {
	return func(e *Engine) { e.viewW, e.viewH = w, h }
}

// WithDitherSeed seeds the dither noise.
func WithDitherSeed(seed int64) Option {
	return func(e *Engine) { e.ditherSeed = seed }
}

// materials holds one variant cache per program.
type materials struct {
	color            *renderer.Material[shaders.ColorUniforms]
	checkerboard     *renderer.Material[shaders.CheckerboardUniforms]
	display          *renderer.Material[shaders.DisplayUniforms]
	bloomPrefilter   *renderer.Material[shaders.BloomPrefilterUniforms]
	bloomBlur        *renderer.Material[shaders.BloomBlurUniforms]
	bloomFinal       *renderer.Material[shaders.BloomFinalUniforms]
	blur             *renderer.Material[shaders.BlurUniforms]
	sunraysMask      *renderer.Material[shaders.SunraysMaskUniforms]
	sunrays          *renderer.Material[shaders.SunraysUniforms]
	splat            *renderer.Material[shaders.SplatUniforms]
	advection        *renderer.Material[shaders.AdvectionUniforms]
	divergence       *renderer.Material[shaders.DivergenceUniforms]
	curl             *renderer.Material[shaders.CurlUniforms]
	vorticity        *renderer.Material[shaders.VorticityUniforms]
	pressure         *renderer.Material[shaders.PressureUniforms]
	gradientSubtract *renderer.Material[shaders.GradientSubtractUniforms]
}

func newMaterials(ctx *renderer.Context) materials {
	return materials{
		color:            renderer.NewMaterial(ctx, shaders.Source(shaders.Color), shaders.BindColorUniforms),
		checkerboard:     renderer.NewMaterial(ctx, shaders.Source(shaders.Checkerboard), shaders.BindCheckerboardUniforms),
		display:          renderer.NewMaterial(ctx, shaders.Source(shaders.Display), shaders.BindDisplayUniforms),
		bloomPrefilter:   renderer.NewMaterial(ctx, shaders.Source(shaders.BloomPrefilter), shaders.BindBloomPrefilterUniforms),
		bloomBlur:        renderer.NewMaterial(ctx, shaders.Source(shaders.BloomBlur), shaders.BindBloomBlurUniforms),
		bloomFinal:       renderer.NewMaterial(ctx, shaders.Source(shaders.BloomFinal), shaders.BindBloomFinalUniforms),
		blur:             renderer.NewMaterial(ctx, shaders.Source(shaders.Blur), shaders.BindBlurUniforms),
		sunraysMask:      renderer.NewMaterial(ctx, shaders.Source(shaders.SunraysMask), shaders.BindSunraysMaskUniforms),
		sunrays:          renderer.NewMaterial(ctx, shaders.Source(shaders.Sunrays), shaders.BindSunraysUniforms),
		splat:            renderer.NewMaterial(ctx, shaders.Source(shaders.Splat), shaders.BindSplatUniforms),
		advection:        renderer.NewMaterial(ctx, shaders.Source(shaders.Advection), shaders.BindAdvectionUniforms),
		divergence:       renderer.NewMaterial(ctx, shaders.Source(shaders.Divergence), shaders.BindDivergenceUniforms),
		curl:             renderer.NewMaterial(ctx, shaders.Source(shaders.Curl), shaders.BindCurlUniforms),
		vorticity:        renderer.NewMaterial(ctx, shaders.Source(shaders.Vorticity), shaders.BindVorticityUniforms),
		pressure:         renderer.NewMaterial(ctx, shaders.Source(shaders.Pressure), shaders.BindPressureUniforms),
		gradientSubtract: renderer.NewMaterial(ctx, shaders.Source(shaders.GradientSubtract), shaders.BindGradientSubtractUniforms),
	}
}

func (m *materials) release() {
	m.color.Release()
	m.checkerboard.Release()
	m.display.Release()
	m.bloomPrefilter.Release()
	m.bloomBlur.Release()
	m.bloomFinal.Release()
	m.blur.Release()
	m.sunraysMask.Release()
	m.sunrays.Release()
	m.splat.Release()
	m.advection.Release()
	m.divergence.Release()
	m.curl.Release()
	m.vorticity.Release()
	m.pressure.Release()
	m.gradientSubtract.Release()
}

// Engine is the fluid simulation and its render pipeline.
type Engine struct {
	ctx   *renderer.Context
	dev   gpu.Device
	log   *slog.Logger
	timer PhaseTimer

	// requested is what the caller asked for; cfg is what runs after the
	// filtering policy.
	requested config.FluidConfig
	cfg       config.FluidConfig
	caps      gpu.Capabilities

	viewW, viewH int
	fields       fields
	mat          materials

	dither     gpu.Texture
	ditherSize int
	ditherSeed int64

	focus     mgl32.Vec2
	queue     []SplatRequest
	abandoned int
	readback  [sampleSize * sampleSize * 4]float32
}

// New negotiates formats on dev, applies the filtering policy to cfg and
// allocates every field. An allocation failure is fatal: everything
// allocated so far is released and the error returned.
func New(dev gpu.Device, cfg config.FluidConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		dev:        dev,
		timer:      noopTimer{},
		requested:  cfg,
		focus:      mgl32.Vec2{0.5, 0.5},
		ditherSeed: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	e.ctx = renderer.NewContext(dev, e.log)
	e.caps = e.ctx.Caps()
	e.cfg = applyFilteringPolicy(cfg, e.caps, e.log)
	e.mat = newMaterials(e.ctx)

	if err := e.createDither(); err != nil {
		e.Close()
		return nil, err
	}
	if err := e.fields.init(e.ctx, e.cfg, e.viewW, e.viewH); err != nil {
		e.Close()
		return nil, fmt.Errorf("allocating fields: %w", err)
	}
	e.log.Info("fluid engine ready",
		"sim", fmt.Sprintf("%dx%d", e.fields.velocity.Width(), e.fields.velocity.Height()),
		"dye", fmt.Sprintf("%dx%d", e.fields.dye.Width(), e.fields.dye.Height()),
		"bloom_levels", len(e.fields.bloomChain),
	)
	return e, nil
}

// Close releases every field, program and helper texture.
func (e *Engine) Close() {
	e.fields.release()
	e.mat.release()
	if e.dither != 0 {
		e.dev.DeleteTexture(e.dither)
		e.dither = 0
	}
	e.ctx.Close()
}

// Capabilities returns the negotiated formats.
func (e *Engine) Capabilities() gpu.Capabilities { return e.caps }

// Config returns the configuration in effect, after the filtering policy.
func (e *Engine) Config() config.FluidConfig { return e.cfg }

// Context exposes the renderer context, e.g. to invalidate cached state
// after a host draws with the same GL context.
func (e *Engine) Context() *renderer.Context { return e.ctx }

// FieldSizes returns the velocity and dye grid sizes.
func (e *Engine) FieldSizes() (sim, dye [2]int) {
	sim = [2]int{e.fields.velocity.Width(), e.fields.velocity.Height()}
	dye = [2]int{e.fields.dye.Width(), e.fields.dye.Height()}
	return sim, dye
}

// AbandonedSteps counts steps Frame dropped after a shader failure.
func (e *Engine) AbandonedSteps() int { return e.abandoned }

// SetFocus moves the sunrays focal centre, in normalized coordinates.
func (e *Engine) SetFocus(x, y float32) { e.focus = mgl32.Vec2{x, y} }

// Configure applies a new configuration. Keyword toggles take effect at the
// next Render; changed resolutions reallocate the affected fields, with
// velocity and dye resampled. On error Config keeps reporting the previous
// configuration.
func (e *Engine) Configure(cfg config.FluidConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	next := applyFilteringPolicy(cfg, e.caps, e.log)
	prev := e.cfg

	if next.SimResolution != prev.SimResolution || next.DyeResolution != prev.DyeResolution {
		if err := e.fields.resize(e.ctx, next, e.viewW, e.viewH); err != nil {
			return fmt.Errorf("reallocating fields: %w", err)
		}
	}
	if next.Bloom.Resolution != prev.Bloom.Resolution || next.Bloom.Iterations != prev.Bloom.Iterations {
		if err := e.fields.initBloom(e.ctx, next, e.viewW, e.viewH); err != nil {
			return fmt.Errorf("reallocating bloom: %w", err)
		}
	}
	if next.Sunrays.Resolution != prev.Sunrays.Resolution {
		if err := e.fields.initSunrays(e.ctx, next, e.viewW, e.viewH); err != nil {
			return fmt.Errorf("reallocating sunrays: %w", err)
		}
	}
	e.requested, e.cfg = cfg, next
	return nil
}

// Resize reshapes every field for a w×h view. Velocity and dye keep their
// content; the rest is reallocated empty. Same size is a no-op.
func (e *Engine) Resize(w, h int) error {
	if w == e.viewW && h == e.viewH {
		return nil
	}
	e.viewW, e.viewH = w, h
	if err := e.fields.resize(e.ctx, e.cfg, w, h); err != nil {
		return fmt.Errorf("resizing fields: %w", err)
	}
	return nil
}

// Reset clears velocity, pressure and dye.
func (e *Engine) Reset() {
	for _, buf := range []*renderer.DoubleBuffer{e.fields.velocity, e.fields.pressure, e.fields.dye} {
		for range 2 {
			buf.Write().Bind()
			e.dev.Clear(0, 0, 0, 0)
			buf.Swap()
		}
	}
}

// aspect is the view aspect ratio used for splats and the checkerboard.
func (e *Engine) aspect() float32 {
	if e.viewW <= 0 || e.viewH <= 0 {
		return 1
	}
	return float32(e.viewW) / float32(e.viewH)
}

// FrameInput is one host frame.
type FrameInput struct {
	DT     float32
	Width  int
	Height int
	Paused bool
	Target renderer.DrawTarget
}

// Frame runs one host frame: resize, queued splats, a step unless paused,
// then render into in.Target.
func (e *Engine) Frame(in FrameInput) error {
	e.ctx.Invalidate()
	if in.Width > 0 && in.Height > 0 {
		if err := e.Resize(in.Width, in.Height); err != nil {
			return err
		}
	}

	if err := e.applyQueue(); err != nil {
		return err
	}
	if !in.Paused {
		if err := e.Step(in.DT); err != nil {
			var ce *gpu.ShaderCompileError
			if !errors.As(err, &ce) {
				return err
			}
			e.abandoned++
			e.log.Error("step abandoned", "error", err)
		}
	}
	if in.Target == nil {
		return nil
	}
	return e.Render(in.Target)
}

// displayKeywords is the keyword set of the display program for cfg.
func displayKeywords(cfg config.FluidConfig) []string {
	var kw []string
	if cfg.Shading {
		kw = append(kw, shaders.KeywordShading)
	}
	if cfg.Bloom.Enabled {
		kw = append(kw, shaders.KeywordBloom)
	}
	if cfg.Sunrays.Enabled {
		kw = append(kw, shaders.KeywordSunrays)
	}
	return kw
}
