// Package renderer manages GPU render targets, read/write target pairs and
// keyword-variant shader programs on top of a gpu.Device.
package renderer

import (
	"log/slog"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/shaders"
)

// Context owns the device together with the state every target and
// material shares: negotiated formats and the active program.
type Context struct {
	dev    gpu.Device
	caps   gpu.Capabilities
	log    *slog.Logger
	active gpu.Program
	binds  int
	copy   *Material[shaders.CopyUniforms]
}

// NewContext negotiates formats on dev. A nil logger uses slog.Default().
func NewContext(dev gpu.Device, log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	c := &Context{
		dev:  dev,
		caps: gpu.Negotiate(dev, gpu.DefaultCandidates),
		log:  log,
	}
	c.copy = NewMaterial(c, shaders.Source(shaders.Copy), shaders.BindCopyUniforms)
	log.Info("gpu capabilities", "caps", c.caps)
	return c
}

func (c *Context) Device() gpu.Device         { return c.dev }
func (c *Context) Caps() gpu.Capabilities     { return c.caps }
func (c *Context) Logger() *slog.Logger       { return c.log }
func (c *Context) ActiveProgram() gpu.Program { return c.active }

// ProgramBinds counts UseProgram calls that reached the device.
func (c *Context) ProgramBinds() int { return c.binds }

// UseProgram binds p unless it is already active and reports whether the
// device was called.
func (c *Context) UseProgram(p gpu.Program) bool {
	if p == c.active {
		return false
	}
	c.dev.UseProgram(p)
	c.active = p
	c.binds++
	return true
}

// Invalidate forgets the active program. Call it when something outside
// the context (the host UI) may have bound another one.
func (c *Context) Invalidate() { c.active = 0 }

// Draw runs the active program over the whole of dst.
func (c *Context) Draw(dst DrawTarget) {
	dst.Bind()
	c.dev.DrawQuad()
}

// Create allocates a w×h target of format f and clears it to zero.
func (c *Context) Create(w, h int, f gpu.Format, filter gpu.Filter) (*RenderTarget, error) {
	tex, err := c.dev.NewTexture(w, h, f, filter, gpu.WrapClamp)
	if err != nil {
		return nil, &gpu.AllocationError{Resource: "texture", Width: w, Height: h, Format: f, Err: err}
	}
	fb, err := c.dev.NewFramebuffer(tex)
	if err != nil {
		c.dev.DeleteTexture(tex)
		return nil, &gpu.AllocationError{Resource: "framebuffer", Width: w, Height: h, Format: f, Err: err}
	}

	t := &RenderTarget{
		dev:         c.dev,
		Texture:     tex,
		Framebuffer: fb,
		Width:       w,
		Height:      h,
		Format:      f,
		Filter:      filter,
	}
	t.Bind()
	c.dev.Clear(0, 0, 0, 0)
	return t, nil
}

// CreateDouble allocates two independent targets.
func (c *Context) CreateDouble(w, h int, f gpu.Format, filter gpu.Filter) (*DoubleBuffer, error) {
	a, err := c.Create(w, h, f, filter)
	if err != nil {
		return nil, err
	}
	b, err := c.Create(w, h, f, filter)
	if err != nil {
		a.Release()
		return nil, err
	}
	return NewDoubleBuffer(a, b), nil
}

// Resize returns an empty w×h target with t's format and filter and
// releases t. Same size returns t unchanged. On error t is kept.
func (c *Context) Resize(t *RenderTarget, w, h int) (*RenderTarget, error) {
	if t.Width == w && t.Height == h {
		return t, nil
	}
	next, err := c.Create(w, h, t.Format, t.Filter)
	if err != nil {
		return t, err
	}
	t.Release()
	return next, nil
}

// ResizeDouble gives buf a new size. The read content is resampled into
// the new read target; write comes back empty. Same size is a no-op.
func (c *Context) ResizeDouble(buf *DoubleBuffer, w, h int) error {
	if buf.Width() == w && buf.Height() == h {
		return nil
	}
	old := buf.Read()

	read, err := c.Create(w, h, old.Format, old.Filter)
	if err != nil {
		return err
	}
	if err := c.Blit(old, read, 1); err != nil {
		read.Release()
		return err
	}
	write, err := c.Create(w, h, old.Format, old.Filter)
	if err != nil {
		read.Release()
		return err
	}

	buf.Release()
	buf.replace(read, write)
	return nil
}

// Blit copies src into dst scaled by value, sampling with src's filter.
func (c *Context) Blit(src *RenderTarget, dst DrawTarget, value float32) error {
	v, err := c.copy.Use()
	if err != nil {
		return err
	}
	c.dev.SetBlend(gpu.BlendNone)
	v.Uniforms.TexelSize.SetVec(src.TexelSize())
	v.Uniforms.Texture.Set(src.Attach(0))
	v.Uniforms.Value.Set(value)
	c.Draw(dst)
	return nil
}

// Close releases the context's own programs.
func (c *Context) Close() {
	c.copy.Release()
}
