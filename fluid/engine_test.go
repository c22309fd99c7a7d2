package fluid

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/soft"
	"github.com/pthm-cable/fluidball/renderer"
	"github.com/pthm-cable/fluidball/shaders"
)

// smallConfig keeps every grid tiny so the software device stays fast.
func smallConfig() config.FluidConfig {
	cfg := config.Defaults().Fluid
	cfg.SimResolution = 16
	cfg.DyeResolution = 32
	cfg.CaptureResolution = 16
	cfg.PressureIterations = 4
	cfg.Bloom.Resolution = 32
	cfg.Bloom.Iterations = 8
	cfg.Sunrays.Resolution = 16
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, opts soft.Options, cfg config.FluidConfig, w, h int) (*Engine, *soft.Device) {
	t.Helper()
	dev := soft.New(opts)
	e, err := New(dev, cfg, WithLogger(discardLogger()), WithViewport(w, h))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e, dev
}

func fill(w, h int, v mgl32.Vec4) []float32 {
	data := make([]float32, w*h*4)
	for i := 0; i < w*h; i++ {
		copy(data[i*4:], v[:])
	}
	return data
}

func allZero(t *testing.T, dev *soft.Device, name string, rt *renderer.RenderTarget) {
	t.Helper()
	data, _, _ := dev.Pixels(rt.Texture)
	for i := 0; i < len(data); i += 4 {
		if data[i] != 0 || data[i+1] != 0 {
			t.Fatalf("%s texel %d = %v, want zero", name, i/4, data[i:i+4])
		}
	}
}

// maxRGB is the largest colour channel of t, ignoring alpha.
func maxRGB(dev *soft.Device, rt *renderer.RenderTarget) float32 {
	data, _, _ := dev.Pixels(rt.Texture)
	var m float32
	for i := 0; i < len(data); i += 4 {
		m = max(m, data[i], data[i+1], data[i+2])
	}
	return m
}

func TestNewShapesFieldsToViewport(t *testing.T) {
	e, _ := newTestEngine(t, soft.Options{}, smallConfig(), 64, 32)
	f := e.fields
	if f.velocity.Width() != 32 || f.velocity.Height() != 16 {
		t.Errorf("velocity = %dx%d, want 32x16", f.velocity.Width(), f.velocity.Height())
	}
	if f.dye.Width() != 64 || f.dye.Height() != 32 {
		t.Errorf("dye = %dx%d, want 64x32", f.dye.Width(), f.dye.Height())
	}
	if f.pressure.Width() != 32 || f.divergence.Width != 32 || f.curl.Height != 16 {
		t.Error("solver fields not on the sim grid")
	}
	if f.velocity.Read().Format != gpu.FormatRG16F || f.pressure.Read().Format != gpu.FormatR16F {
		t.Errorf("formats = %v/%v", f.velocity.Read().Format, f.pressure.Read().Format)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.PressureIterations = 0
	_, err := New(soft.New(soft.Options{}), cfg, WithLogger(discardLogger()))
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want config.ErrInvalid", err)
	}
}

func TestNewAllocationFailureReleasesEverything(t *testing.T) {
	dev := soft.New(soft.Options{MaxTextureSize: 20})
	_, err := New(dev, smallConfig(), WithLogger(discardLogger()))
	var ae *gpu.AllocationError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *gpu.AllocationError", err)
	}
	if s := dev.Stats(); s.Textures != 0 || s.Framebuffers != 0 {
		t.Errorf("leaked %d textures, %d framebuffers", s.Textures, s.Framebuffers)
	}
}

func TestStepKeepsQuiescentFluidAtRest(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	for range 3 {
		if err := e.Step(1.0 / 60); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	allZero(t, dev, "divergence", e.fields.divergence)
	allZero(t, dev, "pressure", e.fields.pressure.Read())
	allZero(t, dev, "velocity", e.fields.velocity.Read())
}

func TestStepAdvectsAndDissipatesDye(t *testing.T) {
	cfg := smallConfig()
	cfg.DensityDissipation = 1
	e, dev := newTestEngine(t, soft.Options{}, cfg, 32, 32)
	dye := e.fields.dye.Read()
	if err := dev.UploadTexture(dye.Texture, dye.Width, dye.Height, fill(dye.Width, dye.Height, mgl32.Vec4{1, 1, 1, 1})); err != nil {
		t.Fatal(err)
	}

	const dt = 0.5
	if err := e.Step(dt); err != nil {
		t.Fatalf("Step: %v", err)
	}
	data, _, _ := dev.Pixels(e.fields.dye.Read().Texture)
	want := float32(1 / (1 + cfg.DensityDissipation*dt))
	for i := 0; i < len(data); i += 4 {
		if math.Abs(float64(data[i]-want)) > 1e-5 {
			t.Fatalf("dye texel %d = %v, want %v", i/4, data[i], want)
		}
	}
}

// texel returns the texel at column x, row y of rt.
func texel(dev *soft.Device, rt *renderer.RenderTarget, x, y int) mgl32.Vec4 {
	data, w, _ := dev.Pixels(rt.Texture)
	i := (y*w + x) * 4
	return mgl32.Vec4{data[i], data[i+1], data[i+2], data[i+3]}
}

func upload(t *testing.T, dev *soft.Device, rt *renderer.RenderTarget, v mgl32.Vec4) {
	t.Helper()
	if err := dev.UploadTexture(rt.Texture, rt.Width, rt.Height, fill(rt.Width, rt.Height, v)); err != nil {
		t.Fatal(err)
	}
}

func TestDivergenceReflectsAtWalls(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	upload(t, dev, e.fields.velocity.Read(), mgl32.Vec4{1, 0, 0, 1})

	// dt = 0 leaves the uniform field untouched by vorticity and advection.
	if err := e.Step(0); err != nil {
		t.Fatalf("Step: %v", err)
	}
	div := e.fields.divergence
	last := div.Width - 1
	for y := range div.Height {
		if got := texel(dev, div, 0, y)[0]; got != 1 {
			t.Fatalf("left column row %d: divergence = %v, want 1", y, got)
		}
		if got := texel(dev, div, last, y)[0]; got != -1 {
			t.Fatalf("right column row %d: divergence = %v, want -1", y, got)
		}
		for x := 1; x < last; x++ {
			if got := texel(dev, div, x, y)[0]; got != 0 {
				t.Fatalf("texel (%d, %d): divergence = %v, want 0", x, y, got)
			}
		}
	}
}

func TestVorticityClampsVelocity(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	upload(t, dev, e.fields.velocity.Read(), mgl32.Vec4{5000, -5000, 0, 1})

	if err := e.Step(0); err != nil {
		t.Fatalf("Step: %v", err)
	}
	vel := e.fields.velocity.Read()
	got := texel(dev, vel, vel.Width/2, vel.Height/2)
	if got[0] != 1000 || got[1] != -1000 {
		t.Errorf("interior velocity = %v, want (1000, -1000)", got.Vec2())
	}
}

func TestPressureDecaysBeforeJacobi(t *testing.T) {
	cfg := smallConfig()
	cfg.Pressure = 0.5
	cfg.PressureIterations = 1
	e, dev := newTestEngine(t, soft.Options{}, cfg, 32, 32)
	upload(t, dev, e.fields.pressure.Read(), mgl32.Vec4{2, 0, 0, 1})

	if err := e.Step(1.0 / 60); err != nil {
		t.Fatalf("Step: %v", err)
	}
	p := e.fields.pressure.Read()
	got := texel(dev, p, p.Width/2, p.Height/2)[0]
	if math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("interior pressure = %v, want 1", got)
	}
}

func TestSplatPeakAndFarField(t *testing.T) {
	cfg := smallConfig()
	cfg.SimResolution = 32
	e, dev := newTestEngine(t, soft.Options{}, cfg, 32, 32)

	// Texel centre of (16, 16) on a 32 grid.
	x, y := float32(16.5/32), float32(16.5/32)
	if err := e.Splat(x, y, 40, -20, mgl32.Vec3{1, 0.5, 0.25}, 0); err != nil {
		t.Fatalf("Splat: %v", err)
	}

	vel, w, _ := dev.Pixels(e.fields.velocity.Read().Texture)
	peak := vel[(16*w+16)*4:]
	if peak[0] != 40 || peak[1] != -20 {
		t.Errorf("velocity peak = %v, want (40, -20)", peak[:2])
	}
	if far := vel[0:2]; math.Abs(float64(far[0])) > 1e-6 || math.Abs(float64(far[1])) > 1e-6 {
		t.Errorf("velocity far field = %v, want ~0", far)
	}

	// sourceMult scales what was there before the new impulse.
	if err := e.inject(e.fields.velocity, mgl32.Vec2{x, y}, mgl32.Vec3{10, 0, 0}, 0.0025, 0.5); err != nil {
		t.Fatalf("inject: %v", err)
	}
	vel, _, _ = dev.Pixels(e.fields.velocity.Read().Texture)
	if got := vel[(16*w+16)*4]; got != 0.5*40+10 {
		t.Errorf("peak after sourceMult = %v, want 30", got)
	}
}

func TestSplatRadiusDivisor(t *testing.T) {
	e, _ := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	if got, want := e.splatRadius(0), e.splatRadius(neutralRadius); got != want {
		t.Errorf("splatRadius(0) = %v, want %v", got, want)
	}
	if got := e.splatRadius(50); got != 2*e.splatRadius(100) {
		t.Errorf("halving the divisor should double the radius, got %v", got)
	}
}

func TestSourceDrainOnlySourcesEmitDye(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	if err := e.SourceDrain(0.5, 0.5, -150, mgl32.Vec3{1, 1, 1}, 0); err != nil {
		t.Fatalf("SourceDrain: %v", err)
	}
	allZero(t, dev, "dye", e.fields.dye.Read())

	p, _, _ := dev.Pixels(e.fields.pressure.Read().Texture)
	if slices.Min(p) >= 0 {
		t.Error("drain left pressure non-negative")
	}

	if err := e.SourceDrain(0.5, 0.5, 150, mgl32.Vec3{1, 1, 1}, 0); err != nil {
		t.Fatalf("SourceDrain: %v", err)
	}
	if maxRGB(dev, e.fields.dye.Read()) <= 0 {
		t.Error("source emitted no dye")
	}
}

func TestQueuedSplatsApplyOnFrame(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	e.QueueSplat(SplatRequest{X: 0.5, Y: 0.5, DX: 5, Color: mgl32.Vec3{1, 0, 0}})
	allZero(t, dev, "dye before frame", e.fields.dye.Read())

	if err := e.Frame(FrameInput{DT: 1.0 / 60, Paused: true}); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if maxRGB(dev, e.fields.dye.Read()) <= 0 {
		t.Error("queued splat not applied")
	}
	if len(e.queue) != 0 {
		t.Errorf("queue not drained: %d left", len(e.queue))
	}
}

func TestRandomSplats(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	if err := e.RandomSplats(rand.New(rand.NewSource(7)), 5); err != nil {
		t.Fatalf("RandomSplats: %v", err)
	}
	if maxRGB(dev, e.fields.dye.Read()) <= 0 {
		t.Error("random splats left dye empty")
	}
}

func TestReset(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	if err := e.RandomSplats(rand.New(rand.NewSource(1)), 3); err != nil {
		t.Fatal(err)
	}
	e.Reset()
	allZero(t, dev, "velocity", e.fields.velocity.Read())
	allZero(t, dev, "dye", e.fields.dye.Read())
	allZero(t, dev, "pressure", e.fields.pressure.Read())
}

func TestBloomLevels(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		iterations int
		want       int
	}{
		{"square 256", 256, 256, 8, 7},
		{"landscape 256", 455, 256, 8, 7},
		{"iteration cap", 256, 256, 3, 3},
		{"too small", 3, 3, 8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := bloomLevels(tt.w, tt.h, tt.iterations)
			if len(levels) != tt.want {
				t.Fatalf("levels = %v, want %d", levels, tt.want)
			}
			for i, l := range levels {
				if l[0] != tt.w>>(i+1) || l[1] != tt.h>>(i+1) || l[0] < 2 || l[1] < 2 {
					t.Errorf("level %d = %v", i, l)
				}
			}
		})
	}
}

func TestBloomCurve(t *testing.T) {
	c := bloomCurve(0.6, 0.7)
	const knee = 0.6*0.7 + 0.0001
	want := mgl32.Vec3{0.6 - knee, knee * 2, 0.25 / knee}
	if !c.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("curve = %v, want %v", c, want)
	}
}

func TestResizeKeepsDye(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	dye := e.fields.dye.Read()
	if err := dev.UploadTexture(dye.Texture, dye.Width, dye.Height, fill(dye.Width, dye.Height, mgl32.Vec4{0.5, 0.25, 0, 1})); err != nil {
		t.Fatal(err)
	}

	if err := e.Resize(64, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if e.fields.dye.Width() != 64 || e.fields.dye.Height() != 32 {
		t.Fatalf("dye = %dx%d, want 64x32", e.fields.dye.Width(), e.fields.dye.Height())
	}
	if e.fields.pressure.Width() != 32 || e.fields.pressure.Height() != 16 {
		t.Errorf("pressure = %dx%d, want 32x16", e.fields.pressure.Width(), e.fields.pressure.Height())
	}

	data, _, _ := dev.Pixels(e.fields.dye.Read().Texture)
	for i := 0; i < len(data); i += 4 {
		if data[i] != 0.5 || data[i+1] != 0.25 {
			t.Fatalf("dye texel %d = %v after resize", i/4, data[i:i+4])
		}
	}
	allZero(t, dev, "dye write", e.fields.dye.Write())
}

func TestFilteringPolicy(t *testing.T) {
	cfg := smallConfig()
	cfg.DyeResolution = 600

	linear := applyFilteringPolicy(cfg, gpu.Capabilities{LinearFiltering: true}, discardLogger())
	if linear != cfg {
		t.Error("policy changed config on a filtering device")
	}

	got := applyFilteringPolicy(cfg, gpu.Capabilities{}, discardLogger())
	if got.DyeResolution != 512 {
		t.Errorf("DyeResolution = %d, want 512", got.DyeResolution)
	}
	if got.Shading || got.Bloom.Enabled || got.Sunrays.Enabled {
		t.Errorf("effects left on: %+v", got)
	}

	cfg.DyeResolution = 128
	if got := applyFilteringPolicy(cfg, gpu.Capabilities{}, discardLogger()); got.DyeResolution != 128 {
		t.Errorf("DyeResolution raised to %d", got.DyeResolution)
	}
}

func TestUnfilterableDeviceUsesManualFiltering(t *testing.T) {
	e, _ := newTestEngine(t, soft.Options{NoFloatLinear: true}, smallConfig(), 32, 32)
	if e.Capabilities().LinearFiltering {
		t.Fatal("expected no linear filtering")
	}
	if cfg := e.Config(); cfg.Shading || cfg.Bloom.Enabled || cfg.Sunrays.Enabled {
		t.Error("effects not disabled")
	}
	if e.fields.dye.Read().Filter != gpu.FilterNearest {
		t.Error("dye not nearest filtered")
	}

	if err := e.Step(1.0 / 60); err != nil {
		t.Fatalf("Step: %v", err)
	}
	v, err := e.mat.advection.Use(shaders.KeywordManualFiltering)
	if err != nil {
		t.Fatal(err)
	}
	if e.mat.advection.Len() != 1 || !slices.Contains(v.Keywords, shaders.KeywordManualFiltering) {
		t.Error("advection did not run the manual filtering variant")
	}
}

func TestConfigureTogglesDisplayVariant(t *testing.T) {
	cfg := smallConfig()
	cfg.Bloom.Enabled = false
	cfg.Sunrays.Enabled = false
	e, dev := newTestEngine(t, soft.Options{}, cfg, 32, 32)
	target, err := e.ctx.Create(16, 16, e.caps.RGBA, gpu.FilterNearest)
	if err != nil {
		t.Fatal(err)
	}
	defer target.Release()

	render := func() {
		t.Helper()
		if err := e.Render(target); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	render()
	if e.mat.display.Len() != 1 {
		t.Fatalf("display variants = %d, want 1", e.mat.display.Len())
	}

	cfg.Shading = false
	if err := e.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	render()
	if e.mat.display.Len() != 2 {
		t.Fatalf("display variants = %d, want 2", e.mat.display.Len())
	}

	compiles := dev.Stats().Compiles
	cfg.Shading = true
	if err := e.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	render()
	if dev.Stats().Compiles != compiles {
		t.Error("returning to a known keyword set recompiled")
	}
}

func TestConfigureReallocatesOnResolutionChange(t *testing.T) {
	e, _ := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	cfg := e.Config()
	cfg.SimResolution = 8
	cfg.Bloom.Iterations = 2
	if err := e.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if e.fields.velocity.Width() != 8 || e.fields.divergence.Width != 8 {
		t.Errorf("sim grid = %d, want 8", e.fields.velocity.Width())
	}
	if len(e.fields.bloomChain) != 2 {
		t.Errorf("bloom levels = %d, want 2", len(e.fields.bloomChain))
	}
}

func TestConfigureFailureKeepsConfig(t *testing.T) {
	e, _ := newTestEngine(t, soft.Options{MaxTextureSize: 64}, smallConfig(), 32, 32)
	before := e.Config()
	cfg := before
	cfg.DyeResolution = 128
	var ae *gpu.AllocationError
	if err := e.Configure(cfg); !errors.As(err, &ae) {
		t.Fatalf("Configure err = %v, want *gpu.AllocationError", err)
	}
	if got := e.Config().DyeResolution; got != before.DyeResolution {
		t.Errorf("Config().DyeResolution = %d, want %d", got, before.DyeResolution)
	}
	if _, dye := e.FieldSizes(); dye != [2]int{32, 32} {
		t.Errorf("dye = %v, want [32 32]", dye)
	}
}

func TestRenderWithEffects(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{ScreenWidth: 32, ScreenHeight: 32}, smallConfig(), 32, 32)
	if err := e.Splat(0.5, 0.5, 0, 0, mgl32.Vec3{5, 5, 5}, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Render(renderer.NewScreen(dev, 32, 32)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if maxRGB(dev, e.fields.bloom) <= 0 {
		t.Error("bloom target empty after rendering a bright splat")
	}
	if maxRGB(dev, e.fields.sunrays) <= 0 {
		t.Error("sunrays target empty")
	}
}

func TestSampleVelocity(t *testing.T) {
	e, dev := newTestEngine(t, soft.Options{}, smallConfig(), 32, 32)
	vel := e.fields.velocity.Read()
	if err := dev.UploadTexture(vel.Texture, vel.Width, vel.Height, fill(vel.Width, vel.Height, mgl32.Vec4{3, -2, 0, 0})); err != nil {
		t.Fatal(err)
	}

	for _, p := range [][2]float32{{0.5, 0.5}, {0, 0}, {1, 1}} {
		dx, dy, err := e.SampleVelocity(p[0], p[1])
		if err != nil {
			t.Fatalf("SampleVelocity: %v", err)
		}
		if dx != 3.0/16 || dy != -2.0/16 {
			t.Errorf("SampleVelocity(%v) = (%v, %v), want (%v, %v)", p, dx, dy, 3.0/16, -2.0/16)
		}
	}
}

func TestCaptureIsTopRowFirst(t *testing.T) {
	cfg := smallConfig()
	cfg.Shading = false
	cfg.Bloom.Enabled = false
	cfg.Sunrays.Enabled = false
	cfg.BackColor = config.Color{R: 255}
	e, dev := newTestEngine(t, soft.Options{}, cfg, 32, 32)

	// Bottom half of the dye (GL rows 0..15) white, top half empty.
	dye := e.fields.dye.Read()
	data := make([]float32, dye.Width*dye.Height*4)
	for y := range dye.Height / 2 {
		for x := range dye.Width {
			copy(data[(y*dye.Width+x)*4:], []float32{1, 1, 1, 1})
		}
	}
	if err := dev.UploadTexture(dye.Texture, dye.Width, dye.Height, data); err != nil {
		t.Fatal(err)
	}

	img, err := e.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("capture = %v, want 16x16", b)
	}
	top := img.RGBAAt(8, 0)
	bottom := img.RGBAAt(8, 15)
	if top.R != 255 || top.G != 0 || top.A != 255 {
		t.Errorf("top = %v, want background red", top)
	}
	if bottom.R != 255 || bottom.G != 255 || bottom.B != 255 {
		t.Errorf("bottom = %v, want white dye", bottom)
	}
}

func TestDitherPixels(t *testing.T) {
	px := ditherPixels(3, 16)
	lo, hi := float32(1), float32(0)
	for i := 0; i < len(px); i += 4 {
		v := px[i]
		if v < 0 || v > 1 {
			t.Fatalf("dither value %v outside [0, 1]", v)
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi-lo < 0.1 {
		t.Errorf("dither nearly constant: [%v, %v]", lo, hi)
	}
}

func TestDisplayKeywords(t *testing.T) {
	cfg := smallConfig()
	cfg.Shading, cfg.Bloom.Enabled, cfg.Sunrays.Enabled = true, false, true
	got := displayKeywords(cfg)
	if !slices.Equal(got, []string{shaders.KeywordShading, shaders.KeywordSunrays}) {
		t.Errorf("keywords = %v", got)
	}
}
