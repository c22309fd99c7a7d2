package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/gpu"
)

// DrawTarget is anything a pass can render into.
type DrawTarget interface {
	Bind()
	Size() (w, h int)
}

// RenderTarget is a texture with its framebuffer.
type RenderTarget struct {
	dev         gpu.Device
	Texture     gpu.Texture
	Framebuffer gpu.Framebuffer
	Width       int
	Height      int
	Format      gpu.Format
	Filter      gpu.Filter
}

// TexelSize is one texel in normalized coordinates.
func (t *RenderTarget) TexelSize() mgl32.Vec2 {
	return mgl32.Vec2{1 / float32(t.Width), 1 / float32(t.Height)}
}

// Attach binds the texture to a sampler unit and returns the unit, so it
// can be passed straight to a sampler uniform.
func (t *RenderTarget) Attach(unit int) int {
	t.dev.BindTexture(unit, t.Texture)
	return unit
}

// Bind makes the target the draw destination with a full viewport.
func (t *RenderTarget) Bind() {
	t.dev.BindFramebuffer(t.Framebuffer, t.Width, t.Height)
}

func (t *RenderTarget) Size() (int, int) { return t.Width, t.Height }

// Release frees the GPU objects. The target must not be used afterwards.
func (t *RenderTarget) Release() {
	if t == nil || t.Texture == 0 {
		return
	}
	t.dev.DeleteFramebuffer(t.Framebuffer)
	t.dev.DeleteTexture(t.Texture)
	t.Texture, t.Framebuffer = 0, 0
}

// Screen is the host back buffer.
type Screen struct {
	dev    gpu.Device
	Width  int
	Height int
}

func NewScreen(dev gpu.Device, w, h int) *Screen {
	return &Screen{dev: dev, Width: w, Height: h}
}

func (s *Screen) Bind() {
	s.dev.BindFramebuffer(gpu.DefaultFramebuffer, s.Width, s.Height)
}

func (s *Screen) Size() (int, int) { return s.Width, s.Height }

// SetSize follows a window resize.
func (s *Screen) SetSize(w, h int) { s.Width, s.Height = w, h }
