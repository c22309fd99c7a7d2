package gpu

import "github.com/go-gl/mathgl/mgl32"

// Device is the GPU surface the renderer drives. Calls are issued from a
// single goroutine; implementations are not safe for concurrent use.
type Device interface {
	NewTexture(w, h int, f Format, filter Filter, wrap Wrap) (Texture, error)
	// UploadTexture replaces the texture content with w*h RGBA float texels.
	UploadTexture(t Texture, w, h int, rgba []float32) error
	DeleteTexture(t Texture)

	// NewFramebuffer attaches t as the single colour attachment. It returns
	// ErrIncompleteFramebuffer when the format is not renderable.
	NewFramebuffer(t Texture) (Framebuffer, error)
	DeleteFramebuffer(fb Framebuffer)

	// SupportsLinearFiltering reports whether textures of format f can be
	// sampled with bilinear filtering.
	SupportsLinearFiltering(f Format) bool

	CompileProgram(src ProgramSource) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	// UniformLocation returns -1 when the program has no such uniform.
	UniformLocation(p Program, name string) int32

	SetUniform1f(loc int32, v float32)
	SetUniform1i(loc int32, v int32)
	SetUniform2f(loc int32, x, y float32)
	SetUniform3f(loc int32, x, y, z float32)
	SetUniform4f(loc int32, x, y, z, w float32)

	BindTexture(unit int, t Texture)
	// BindFramebuffer makes fb the draw target and sets a w×h viewport.
	BindFramebuffer(fb Framebuffer, w, h int)
	SetBlend(mode BlendMode)
	Clear(r, g, b, a float32)
	DrawQuad()
	// ReadPixels copies a w×h block of the bound framebuffer into dst as
	// RGBA float32, row-major from the bottom row.
	ReadPixels(x, y, w, h int, dst []float32) error
}

// ProgramSource describes one vertex+fragment pair. Reference is the
// per-fragment function the software device evaluates in place of the
// GLSL; hardware devices ignore it.
type ProgramSource struct {
	Name      string
	Vertex    string
	Fragment  string
	Reference Kernel
}

// Kernel computes one output fragment.
type Kernel func(f Fragment) mgl32.Vec4

// Fragment is the per-invocation view a Kernel gets: the interpolated
// coordinate, uniforms by name and sampling of bound texture units.
type Fragment interface {
	UV() mgl32.Vec2
	Float(name string) float32
	Vec2(name string) mgl32.Vec2
	Vec3(name string) mgl32.Vec3
	Vec4(name string) mgl32.Vec4
	// Sample reads the texture bound to the unit held by the named sampler
	// uniform.
	Sample(sampler string, uv mgl32.Vec2) mgl32.Vec4
	Defined(keyword string) bool
}
