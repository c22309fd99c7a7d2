package soft

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/gpu"
)

const testFragment = `#version 330 core
uniform sampler2D uTexture;
uniform vec4 color;
uniform vec2 offset;
void main() {}
`

// sampleKernel returns color plus the source texel shifted by offset.
func sampleKernel(f gpu.Fragment) mgl32.Vec4 {
	return f.Vec4("color").Add(f.Sample("uTexture", f.UV().Add(f.Vec2("offset"))))
}

func newTarget(t *testing.T, d *Device, w, h int, format gpu.Format, filter gpu.Filter) (gpu.Texture, gpu.Framebuffer) {
	t.Helper()
	tex, err := d.NewTexture(w, h, format, filter, gpu.WrapClamp)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	fb, err := d.NewFramebuffer(tex)
	if err != nil {
		t.Fatalf("NewFramebuffer: %v", err)
	}
	return tex, fb
}

func compile(t *testing.T, d *Device) gpu.Program {
	t.Helper()
	p, err := d.CompileProgram(gpu.ProgramSource{Name: "test", Fragment: testFragment, Reference: sampleKernel})
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	return p
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestLinearSamplingMatchesTexelCentres(t *testing.T) {
	d := New(Options{})
	src, _ := newTarget(t, d, 2, 1, gpu.FormatRGBA32F, gpu.FilterLinear)
	if err := d.UploadTexture(src, 2, 1, []float32{0, 0, 0, 1, 1, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	dst, fb := newTarget(t, d, 4, 1, gpu.FormatRGBA32F, gpu.FilterNearest)

	p := compile(t, d)
	d.UseProgram(p)
	d.BindTexture(0, src)
	d.SetUniform1i(d.UniformLocation(p, "uTexture"), 0)
	d.BindFramebuffer(fb, 4, 1)
	d.DrawQuad()

	px, _, _ := d.Pixels(dst)
	// Destination centres 0.125..0.875 map to source coordinates -0.25..1.25.
	want := []float32{0, 0.25, 0.75, 1}
	for i, w := range want {
		if !near(px[i*4], w) {
			t.Errorf("texel %d: got %v, want %v", i, px[i*4], w)
		}
	}
}

func TestNoFloatLinearFallsBackToNearest(t *testing.T) {
	d := New(Options{NoFloatLinear: true})
	src, _ := newTarget(t, d, 2, 1, gpu.FormatRGBA16F, gpu.FilterLinear)
	d.UploadTexture(src, 2, 1, []float32{0, 0, 0, 1, 1, 0, 0, 1})
	dst, fb := newTarget(t, d, 4, 1, gpu.FormatRGBA16F, gpu.FilterNearest)

	p := compile(t, d)
	d.UseProgram(p)
	d.BindTexture(0, src)
	d.BindFramebuffer(fb, 4, 1)
	d.DrawQuad()

	px, _, _ := d.Pixels(dst)
	want := []float32{0, 0, 1, 1}
	for i, w := range want {
		if px[i*4] != w {
			t.Errorf("texel %d: got %v, want %v", i, px[i*4], w)
		}
	}
}

func TestChannelMaskAndBlend(t *testing.T) {
	d := New(Options{})
	dst, fb := newTarget(t, d, 2, 2, gpu.FormatR16F, gpu.FilterNearest)
	p := compile(t, d)
	d.UseProgram(p)
	d.SetUniform4f(d.UniformLocation(p, "color"), 0.5, 0.7, 0.9, 0.3)
	d.BindTexture(0, 0)
	d.BindFramebuffer(fb, 2, 2)
	d.Clear(0, 0, 0, 0)

	// Unbound sampler reads (0,0,0,1); alpha is irrelevant for an R target.
	d.SetBlend(gpu.BlendAdditive)
	d.DrawQuad()
	d.DrawQuad()

	px, _, _ := d.Pixels(dst)
	if !near(px[0], 1.0) {
		t.Errorf("red after two additive draws = %v, want 1.0", px[0])
	}
	if px[1] != 0 || px[2] != 0 || px[3] != 1 {
		t.Errorf("missing channels = %v, want (0,0,1)", px[1:4])
	}
}

func TestIncompleteFramebuffer(t *testing.T) {
	d := New(Options{Renderable: []gpu.Format{gpu.FormatRGBA8}})
	tex, err := d.NewTexture(4, 4, gpu.FormatRGBA16F, gpu.FilterNearest, gpu.WrapClamp)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.NewFramebuffer(tex); !errors.Is(err, gpu.ErrIncompleteFramebuffer) {
		t.Errorf("got %v, want ErrIncompleteFramebuffer", err)
	}
}

func TestCompileErrors(t *testing.T) {
	d := New(Options{})
	_, err := d.CompileProgram(gpu.ProgramSource{Name: "broken", Fragment: "#error nope\n", Reference: sampleKernel})
	var ce *gpu.ShaderCompileError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ShaderCompileError", err)
	}
	if ce.Stage != "fragment" {
		t.Errorf("stage = %q, want fragment", ce.Stage)
	}
	if _, err := d.CompileProgram(gpu.ProgramSource{Name: "nokernel"}); !errors.As(err, &ce) {
		t.Errorf("missing kernel: got %v", err)
	}
	if d.Stats().Compiles != 0 {
		t.Errorf("failed compiles counted: %d", d.Stats().Compiles)
	}
}

func TestReadPixelsOutOfRangeIsZero(t *testing.T) {
	d := New(Options{})
	_, fb := newTarget(t, d, 2, 2, gpu.FormatRGBA32F, gpu.FilterNearest)
	d.BindFramebuffer(fb, 2, 2)
	d.Clear(1, 2, 3, 4)

	buf := make([]float32, 3*3*4)
	if err := d.ReadPixels(-1, -1, 3, 3, buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0 {
		t.Errorf("outside texel = %v, want 0", buf[0])
	}
	// (1,1) in the block is texel (0,0).
	o := (1*3 + 1) * 4
	if buf[o] != 1 || buf[o+3] != 4 {
		t.Errorf("inside texel = %v", buf[o:o+4])
	}
	if err := d.ReadPixels(0, 0, 2, 2, make([]float32, 3)); err == nil {
		t.Error("short buffer accepted")
	}
}
