// Package gldevice implements gpu.Device on OpenGL 3.3 core through go-gl.
// The context is owned by the host window (raylib); New must be called on
// the thread that holds it, after the window is open.
package gldevice

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/fluidball/gpu"
)

// Device is the OpenGL gpu.Device.
type Device struct {
	quadVAO uint32
	quadVBO uint32
	quadEBO uint32
}

var _ gpu.Device = (*Device)(nil)

// New loads the GL function pointers and builds the full-screen quad.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	d := &Device{}
	d.initQuad()
	gl.Disable(gl.DEPTH_TEST)
	return d, nil
}

func (d *Device) initQuad() {
	verts := []float32{-1, -1, -1, 1, 1, 1, 1, -1}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.BindVertexArray(d.quadVAO)

	gl.GenBuffers(1, &d.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	gl.GenBuffers(1, &d.quadEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.quadEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Restore hands GL state back to raylib's expectations after the fluid
// passes: default framebuffer, alpha blending, no program, unit 0.
func (d *Device) Restore(screenW, screenH int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(screenW), int32(screenH))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(0)
}

// Close frees the quad buffers.
func (d *Device) Close() {
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteBuffers(1, &d.quadEBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
}

func glFormat(f gpu.Format) (internal int32, format, xtype uint32) {
	switch f {
	case gpu.FormatR16F:
		return gl.R16F, gl.RED, gl.HALF_FLOAT
	case gpu.FormatRG16F:
		return gl.RG16F, gl.RG, gl.HALF_FLOAT
	case gpu.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT
	case gpu.FormatR32F:
		return gl.R32F, gl.RED, gl.FLOAT
	case gpu.FormatRG32F:
		return gl.RG32F, gl.RG, gl.FLOAT
	case gpu.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

func (d *Device) NewTexture(w, h int, f gpu.Format, filter gpu.Filter, wrap gpu.Wrap) (gpu.Texture, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, errors.New("gl: glGenTextures returned 0")
	}

	glFilter := int32(gl.NEAREST)
	if filter == gpu.FilterLinear {
		glFilter = gl.LINEAR
	}
	glWrap := int32(gl.CLAMP_TO_EDGE)
	if wrap == gpu.WrapRepeat {
		glWrap = gl.REPEAT
	}

	internal, format, xtype := glFormat(f)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(w), int32(h), 0, format, xtype, nil)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("gl: glTexImage2D error 0x%x", code)
	}
	return gpu.Texture(tex), nil
}

func (d *Device) UploadTexture(t gpu.Texture, w, h int, rgba []float32) error {
	if len(rgba) < w*h*4 {
		return fmt.Errorf("gl: upload of %dx%d needs %d floats, got %d", w, h, w*h*4, len(rgba))
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.FLOAT, gl.Ptr(rgba))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl: glTexSubImage2D error 0x%x", code)
	}
	return nil
}

func (d *Device) DeleteTexture(t gpu.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

func (d *Device) NewFramebuffer(t gpu.Texture) (gpu.Framebuffer, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	if fbo == 0 {
		return 0, errors.New("gl: glGenFramebuffers returned 0")
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(t), 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("%w (status 0x%x)", gpu.ErrIncompleteFramebuffer, status)
	}
	return gpu.Framebuffer(fbo), nil
}

func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	fbo := uint32(fb)
	gl.DeleteFramebuffers(1, &fbo)
}

// SupportsLinearFiltering is true for every format: desktop GL 3.x
// requires filtering of 16- and 32-bit float textures.
func (d *Device) SupportsLinearFiltering(gpu.Format) bool { return true }

func (d *Device) BindTexture(unit int, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Device) BindFramebuffer(fb gpu.Framebuffer, w, h int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (d *Device) SetBlend(mode gpu.BlendMode) {
	switch mode {
	case gpu.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	case gpu.BlendPremultiplied:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawQuad() {
	gl.BindVertexArray(d.quadVAO)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_SHORT, gl.PtrOffset(0))
}

func (d *Device) ReadPixels(x, y, w, h int, dst []float32) error {
	if len(dst) < w*h*4 {
		return fmt.Errorf("gl: read buffer holds %d floats, need %d", len(dst), w*h*4)
	}
	gl.ReadPixels(int32(x), int32(y), int32(w), int32(h), gl.RGBA, gl.FLOAT, gl.Ptr(dst))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl: glReadPixels error 0x%x", code)
	}
	return nil
}
