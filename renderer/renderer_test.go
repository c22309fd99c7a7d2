package renderer

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/soft"
	"github.com/pthm-cable/fluidball/shaders"
)

func newTestContext(t *testing.T, opts soft.Options) (*Context, *soft.Device) {
	t.Helper()
	dev := soft.New(opts)
	return NewContext(dev, slog.New(slog.NewTextHandler(io.Discard, nil))), dev
}

// pattern fills a w×h RGBA buffer with a value unique per texel.
func pattern(w, h int) []float32 {
	data := make([]float32, w*h*4)
	for i := 0; i < w*h; i++ {
		data[i*4] = float32(i)
		data[i*4+1] = float32(i) * 0.5
		data[i*4+3] = 1
	}
	return data
}

func TestDoubleBufferSwap(t *testing.T) {
	ctx, _ := newTestContext(t, soft.Options{})
	buf, err := ctx.CreateDouble(4, 4, gpu.FormatRGBA16F, gpu.FilterNearest)
	if err != nil {
		t.Fatalf("CreateDouble: %v", err)
	}
	read, write := buf.Read(), buf.Write()
	if read == write {
		t.Fatal("read and write are the same target")
	}

	buf.Swap()
	if buf.Read() != write || buf.Write() != read {
		t.Error("swap did not exchange roles")
	}
	buf.Swap()
	if buf.Read() != read || buf.Write() != write {
		t.Error("two swaps did not restore the original roles")
	}
}

func TestNewDoubleBufferRejectsAliasing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for aliased targets")
		}
	}()
	rt := &RenderTarget{}
	NewDoubleBuffer(rt, rt)
}

func TestCreateClears(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	rt, err := ctx.Create(3, 2, gpu.FormatRGBA16F, gpu.FilterLinear)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, w, h := dev.Pixels(rt.Texture)
	if w != 3 || h != 2 {
		t.Fatalf("size = %dx%d, want 3x2", w, h)
	}
	for i, v := range data {
		if v != 0 {
			t.Fatalf("component %d = %v, want 0", i, v)
		}
	}
	if ts := rt.TexelSize(); ts.X() != 1.0/3 || ts.Y() != 0.5 {
		t.Errorf("TexelSize = %v", ts)
	}
}

func TestCreateAllocationError(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{MaxTextureSize: 64})
	before := dev.Stats()

	_, err := ctx.Create(128, 16, gpu.FormatRGBA16F, gpu.FilterLinear)
	var ae *gpu.AllocationError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *gpu.AllocationError", err)
	}
	if ae.Resource != "texture" || ae.Width != 128 || ae.Height != 16 {
		t.Errorf("unexpected error fields: %+v", ae)
	}

	after := dev.Stats()
	if after.Textures != before.Textures || after.Framebuffers != before.Framebuffers {
		t.Errorf("leaked resources: before %+v after %+v", before, after)
	}
}

func TestCreateIncompleteFramebuffer(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{Renderable: []gpu.Format{gpu.FormatRGBA8}})
	before := dev.Stats()

	_, err := ctx.Create(4, 4, gpu.FormatRG16F, gpu.FilterLinear)
	if !errors.Is(err, gpu.ErrIncompleteFramebuffer) {
		t.Fatalf("err = %v, want ErrIncompleteFramebuffer", err)
	}
	if dev.Stats().Textures != before.Textures {
		t.Error("texture not freed after framebuffer failure")
	}
}

func TestResizeDoublePreservesContent(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	buf, err := ctx.CreateDouble(4, 4, gpu.FormatRGBA32F, gpu.FilterNearest)
	if err != nil {
		t.Fatalf("CreateDouble: %v", err)
	}
	src := pattern(4, 4)
	if err := dev.UploadTexture(buf.Read().Texture, 4, 4, src); err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}
	live := dev.Stats().Textures

	if err := ctx.ResizeDouble(buf, 8, 8); err != nil {
		t.Fatalf("ResizeDouble: %v", err)
	}
	if buf.Width() != 8 || buf.Height() != 8 {
		t.Fatalf("size = %dx%d, want 8x8", buf.Width(), buf.Height())
	}
	if got := dev.Stats().Textures; got != live {
		t.Errorf("live textures = %d, want %d", got, live)
	}

	got, _, _ := dev.Pixels(buf.Read().Texture)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := src[((y/2)*4+x/2)*4]
			if v := got[(y*8+x)*4]; v != want {
				t.Fatalf("read(%d,%d) = %v, want %v", x, y, v, want)
			}
		}
	}

	blank, _, _ := dev.Pixels(buf.Write().Texture)
	for i, v := range blank {
		if v != 0 {
			t.Fatalf("write component %d = %v, want 0", i, v)
		}
	}
}

func TestResizeDoubleSameSizeIsNoop(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	buf, err := ctx.CreateDouble(4, 4, gpu.FormatRGBA16F, gpu.FilterLinear)
	if err != nil {
		t.Fatalf("CreateDouble: %v", err)
	}
	buf.Swap()
	read, write := buf.Read(), buf.Write()
	draws := dev.Stats().Draws

	if err := ctx.ResizeDouble(buf, 4, 4); err != nil {
		t.Fatalf("ResizeDouble: %v", err)
	}
	if buf.Read() != read || buf.Write() != write {
		t.Error("same-size resize replaced targets")
	}
	if dev.Stats().Draws != draws {
		t.Error("same-size resize drew")
	}
}

func TestResizeDoubleFailureKeepsBuffer(t *testing.T) {
	ctx, _ := newTestContext(t, soft.Options{MaxTextureSize: 16})
	buf, err := ctx.CreateDouble(8, 8, gpu.FormatRGBA16F, gpu.FilterLinear)
	if err != nil {
		t.Fatalf("CreateDouble: %v", err)
	}
	read := buf.Read()

	var ae *gpu.AllocationError
	if err := ctx.ResizeDouble(buf, 32, 32); !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *gpu.AllocationError", err)
	}
	if buf.Read() != read || buf.Width() != 8 {
		t.Error("failed resize modified the buffer")
	}
}

func TestBlitScales(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	src, _ := ctx.Create(2, 2, gpu.FormatRGBA32F, gpu.FilterNearest)
	dst, _ := ctx.Create(2, 2, gpu.FormatRGBA32F, gpu.FilterNearest)
	if err := dev.UploadTexture(src.Texture, 2, 2, pattern(2, 2)); err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}

	if err := ctx.Blit(src, dst, 0.5); err != nil {
		t.Fatalf("Blit: %v", err)
	}
	got, _, _ := dev.Pixels(dst.Texture)
	for i := 0; i < 4; i++ {
		if want := float32(i) * 0.5; got[i*4] != want {
			t.Errorf("texel %d = %v, want %v", i, got[i*4], want)
		}
	}
}

func TestMaterialVariantKey(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	m := NewMaterial(ctx, shaders.Source(shaders.Display), shaders.BindDisplayUniforms)

	a, err := m.Use(shaders.KeywordSunrays, shaders.KeywordBloom)
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	compiles := dev.Stats().Compiles

	b, err := m.Use(shaders.KeywordBloom, shaders.KeywordSunrays, shaders.KeywordBloom)
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if a != b {
		t.Error("equal keyword sets produced different variants")
	}
	if dev.Stats().Compiles != compiles {
		t.Error("cached variant was recompiled")
	}
	if !slices.Equal(a.Keywords, []string{shaders.KeywordBloom, shaders.KeywordSunrays}) {
		t.Errorf("Keywords = %v, want sorted and deduplicated", a.Keywords)
	}

	c, err := m.Use()
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if c == a {
		t.Error("different keyword sets share a variant")
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestMaterialElidesRedundantBinds(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	m := NewMaterial(ctx, shaders.Source(shaders.Color), shaders.BindColorUniforms)

	binds := dev.Stats().ProgramBinds
	for range 3 {
		if _, err := m.Use(); err != nil {
			t.Fatalf("Use: %v", err)
		}
	}
	if got := dev.Stats().ProgramBinds - binds; got != 1 {
		t.Errorf("device binds = %d, want 1", got)
	}

	ctx.Invalidate()
	if _, err := m.Use(); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if got := dev.Stats().ProgramBinds - binds; got != 2 {
		t.Errorf("device binds after Invalidate = %d, want 2", got)
	}
}

func TestMaterialUniformsArePerVariant(t *testing.T) {
	ctx, dev := newTestContext(t, soft.Options{})
	m := NewMaterial(ctx, shaders.Source(shaders.Display), shaders.BindDisplayUniforms)

	plain, _ := m.Use()
	plain.Uniforms.DitherScale.Set(3, 4)

	shaded, _ := m.Use(shaders.KeywordShading)
	if v, _ := dev.UniformValue(shaded.Program, "ditherScale"); v[0] != 0 || v[1] != 0 {
		t.Errorf("new variant inherited ditherScale %v", v)
	}
	if v, _ := dev.UniformValue(plain.Program, "ditherScale"); v[0] != 3 || v[1] != 4 {
		t.Errorf("original variant lost ditherScale: %v", v)
	}
}

func TestMaterialCompileErrorNotCached(t *testing.T) {
	ctx, _ := newTestContext(t, soft.Options{})
	src := shaders.Source(shaders.Copy)
	src.Fragment += "\n#error broken variant\n"
	m := NewMaterial(ctx, src, shaders.BindCopyUniforms)

	_, err := m.Use("BROKEN")
	var ce *gpu.ShaderCompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *gpu.ShaderCompileError", err)
	}
	if !slices.Equal(ce.Keywords, []string{"BROKEN"}) {
		t.Errorf("Keywords = %v", ce.Keywords)
	}
	if m.Len() != 0 {
		t.Errorf("failed variant cached: Len = %d", m.Len())
	}
}

func TestMaterialRelease(t *testing.T) {
	ctx, _ := newTestContext(t, soft.Options{})
	m := NewMaterial(ctx, shaders.Source(shaders.Color), shaders.BindColorUniforms)
	v, _ := m.Use()
	if ctx.ActiveProgram() != v.Program {
		t.Fatal("variant not active after Use")
	}
	m.Release()
	if m.Len() != 0 {
		t.Errorf("Len after Release = %d", m.Len())
	}
	if ctx.ActiveProgram() != 0 {
		t.Error("released program still tracked as active")
	}
}

func TestResolution(t *testing.T) {
	tests := []struct {
		name         string
		viewW, viewH int
		res          int
		wantW, wantH int
	}{
		{"landscape", 1920, 1080, 128, 228, 128},
		{"portrait", 1080, 1920, 128, 128, 228},
		{"square", 800, 800, 256, 256, 256},
		{"empty view", 0, 0, 64, 64, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Resolution(tt.viewW, tt.viewH, tt.res)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Resolution = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
