// Package soft is a CPU implementation of gpu.Device. It rasterises the
// full-screen quad by evaluating each program's reference kernel at every
// destination texel centre, with GL sampling and blending rules. It backs
// headless runs and the test suite.
package soft

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/glsl"
)

const maxUnits = 16

// Options configures what the device claims to support.
type Options struct {
	ScreenWidth  int
	ScreenHeight int
	// Renderable limits the formats a framebuffer accepts. Nil accepts all.
	Renderable []gpu.Format
	// NoFloatLinear makes float formats unfilterable; linear sampling of
	// them degrades to nearest.
	NoFloatLinear bool
	// MaxTextureSize rejects larger textures. Zero means unlimited.
	MaxTextureSize int
}

// Stats counts device calls of interest to tests and telemetry.
type Stats struct {
	Compiles     int
	ProgramBinds int
	Draws        int
	Textures     int // live textures
	Framebuffers int // live framebuffers
}

type texture struct {
	w, h   int
	format gpu.Format
	filter gpu.Filter
	wrap   gpu.Wrap
	data   []float32
	linear bool
}

type program struct {
	name    string
	kernel  gpu.Kernel
	locs    map[string]int32
	values  [][4]float32
	defines map[string]bool
}

// Device is the software gpu.Device.
type Device struct {
	opts         Options
	textures     map[gpu.Texture]*texture
	framebuffers map[gpu.Framebuffer]gpu.Texture
	programs     map[gpu.Program]*program
	next         uint32

	current *program
	units   [maxUnits]gpu.Texture
	target  *texture
	viewW   int
	viewH   int
	blend   gpu.BlendMode
	screen  *texture
	scratch []float32
	stats   Stats
}

var _ gpu.Device = (*Device)(nil)

// New creates a device with a back buffer of the configured screen size.
func New(opts Options) *Device {
	if opts.ScreenWidth <= 0 {
		opts.ScreenWidth = 64
	}
	if opts.ScreenHeight <= 0 {
		opts.ScreenHeight = 64
	}
	d := &Device{
		opts:         opts,
		textures:     make(map[gpu.Texture]*texture),
		framebuffers: make(map[gpu.Framebuffer]gpu.Texture),
		programs:     make(map[gpu.Program]*program),
	}
	d.SetScreenSize(opts.ScreenWidth, opts.ScreenHeight)
	d.target = d.screen
	d.viewW, d.viewH = d.screen.w, d.screen.h
	return d
}

// SetScreenSize reallocates the back buffer.
func (d *Device) SetScreenSize(w, h int) {
	wasBound := d.target == d.screen
	d.screen = &texture{w: w, h: h, format: gpu.FormatRGBA8, data: make([]float32, w*h*4)}
	if wasBound {
		d.target = d.screen
	}
}

// ScreenSize returns the back buffer dimensions.
func (d *Device) ScreenSize() (int, int) { return d.screen.w, d.screen.h }

func (d *Device) Stats() Stats {
	s := d.stats
	s.Textures = len(d.textures)
	s.Framebuffers = len(d.framebuffers)
	return s
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) NewTexture(w, h int, f gpu.Format, filter gpu.Filter, wrap gpu.Wrap) (gpu.Texture, error) {
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("soft: invalid texture size %dx%d", w, h)
	}
	if f.Channels() == 0 {
		return 0, fmt.Errorf("soft: unknown format %d", f)
	}
	if m := d.opts.MaxTextureSize; m > 0 && (w > m || h > m) {
		return 0, fmt.Errorf("soft: %dx%d exceeds max texture size %d", w, h, m)
	}
	t := gpu.Texture(d.handle())
	d.textures[t] = &texture{
		w: w, h: h, format: f, filter: filter, wrap: wrap,
		data:   make([]float32, w*h*4),
		linear: filter == gpu.FilterLinear && d.SupportsLinearFiltering(f),
	}
	return t, nil
}

func (d *Device) UploadTexture(t gpu.Texture, w, h int, rgba []float32) error {
	tex, ok := d.textures[t]
	if !ok {
		return fmt.Errorf("soft: unknown texture %d", t)
	}
	if w != tex.w || h != tex.h || len(rgba) < w*h*4 {
		return fmt.Errorf("soft: upload %dx%d (%d floats) into %dx%d texture", w, h, len(rgba), tex.w, tex.h)
	}
	for i := 0; i < w*h; i++ {
		tex.store(i, mgl32.Vec4{rgba[i*4], rgba[i*4+1], rgba[i*4+2], rgba[i*4+3]})
	}
	return nil
}

func (d *Device) DeleteTexture(t gpu.Texture) {
	tex := d.textures[t]
	if tex == nil {
		return
	}
	if d.target == tex {
		d.target = d.screen
	}
	for i, u := range d.units {
		if u == t {
			d.units[i] = 0
		}
	}
	delete(d.textures, t)
}

func (d *Device) NewFramebuffer(t gpu.Texture) (gpu.Framebuffer, error) {
	tex, ok := d.textures[t]
	if !ok {
		return 0, fmt.Errorf("soft: unknown texture %d", t)
	}
	if d.opts.Renderable != nil && !slices.Contains(d.opts.Renderable, tex.format) {
		return 0, gpu.ErrIncompleteFramebuffer
	}
	fb := gpu.Framebuffer(d.handle())
	d.framebuffers[fb] = t
	return fb, nil
}

func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	delete(d.framebuffers, fb)
}

func (d *Device) SupportsLinearFiltering(f gpu.Format) bool {
	if f.Float() {
		return !d.opts.NoFloatLinear
	}
	return true
}

// CompileProgram parses the uniform declarations and keywords of src and
// binds its reference kernel. A source without a kernel, or containing an
// #error directive, fails the way a driver would.
func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	if src.Reference == nil {
		return 0, &gpu.ShaderCompileError{Program: src.Name, Stage: "link", Log: "no reference kernel"}
	}
	for _, stage := range []struct{ name, code string }{{"vertex", src.Vertex}, {"fragment", src.Fragment}} {
		if i := strings.Index(stage.code, "#error"); i >= 0 {
			line := stage.code[i:]
			if j := strings.IndexByte(line, '\n'); j >= 0 {
				line = line[:j]
			}
			return 0, &gpu.ShaderCompileError{Program: src.Name, Stage: stage.name, Log: line}
		}
	}

	p := &program{
		name:    src.Name,
		kernel:  src.Reference,
		locs:    make(map[string]int32),
		defines: make(map[string]bool),
	}
	for i, u := range glsl.ParseUniforms(src.Vertex, src.Fragment) {
		p.locs[u.Name] = int32(i)
	}
	p.values = make([][4]float32, len(p.locs))
	for _, k := range glsl.Defines(src.Fragment) {
		p.defines[k] = true
	}

	d.stats.Compiles++
	h := gpu.Program(d.handle())
	d.programs[h] = p
	return h, nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	if prog := d.programs[p]; prog != nil && d.current == prog {
		d.current = nil
	}
	delete(d.programs, p)
}

func (d *Device) UseProgram(p gpu.Program) {
	d.stats.ProgramBinds++
	d.current = d.programs[p]
}

func (d *Device) UniformLocation(p gpu.Program, name string) int32 {
	prog := d.programs[p]
	if prog == nil {
		return -1
	}
	if loc, ok := prog.locs[name]; ok {
		return loc
	}
	return -1
}

// UniformValue returns the last value set for name on program p.
func (d *Device) UniformValue(p gpu.Program, name string) ([4]float32, bool) {
	prog := d.programs[p]
	if prog == nil {
		return [4]float32{}, false
	}
	loc, ok := prog.locs[name]
	if !ok {
		return [4]float32{}, false
	}
	return prog.values[loc], true
}

func (d *Device) setUniform(loc int32, v [4]float32) {
	if d.current == nil || loc < 0 || int(loc) >= len(d.current.values) {
		return
	}
	d.current.values[loc] = v
}

func (d *Device) SetUniform1f(loc int32, v float32) {
	d.setUniform(loc, [4]float32{v})
}

func (d *Device) SetUniform1i(loc int32, v int32) {
	d.setUniform(loc, [4]float32{float32(v)})
}

func (d *Device) SetUniform2f(loc int32, x, y float32) {
	d.setUniform(loc, [4]float32{x, y})
}

func (d *Device) SetUniform3f(loc int32, x, y, z float32) {
	d.setUniform(loc, [4]float32{x, y, z})
}

func (d *Device) SetUniform4f(loc int32, x, y, z, w float32) {
	d.setUniform(loc, [4]float32{x, y, z, w})
}

func (d *Device) BindTexture(unit int, t gpu.Texture) {
	if unit >= 0 && unit < maxUnits {
		d.units[unit] = t
	}
}

func (d *Device) BindFramebuffer(fb gpu.Framebuffer, w, h int) {
	d.viewW, d.viewH = w, h
	if fb == gpu.DefaultFramebuffer {
		d.target = d.screen
		return
	}
	if t, ok := d.framebuffers[fb]; ok {
		d.target = d.textures[t]
	}
}

func (d *Device) SetBlend(mode gpu.BlendMode) { d.blend = mode }

func (d *Device) Clear(r, g, b, a float32) {
	if d.target == nil {
		return
	}
	c := mgl32.Vec4{r, g, b, a}
	for i := 0; i < d.target.w*d.target.h; i++ {
		d.target.store(i, c)
	}
}

// DrawQuad runs the current program over the viewport. Results are staged
// so kernels may sample the texture being drawn into.
func (d *Device) DrawQuad() {
	dst := d.target
	if d.current == nil || dst == nil || d.viewW <= 0 || d.viewH <= 0 {
		return
	}
	d.stats.Draws++

	w, h := min(d.viewW, dst.w), min(d.viewH, dst.h)
	if cap(d.scratch) < w*h*4 {
		d.scratch = make([]float32, w*h*4)
	}
	out := d.scratch[:w*h*4]

	frag := &fragment{dev: d, prog: d.current}
	invW, invH := 1/float32(d.viewW), 1/float32(d.viewH)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			frag.uv = mgl32.Vec2{(float32(x) + 0.5) * invW, (float32(y) + 0.5) * invH}
			c := d.current.kernel(frag)
			i := (y*w + x) * 4
			copy(out[i:i+4], c[:])
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			src := mgl32.Vec4{out[i], out[i+1], out[i+2], out[i+3]}
			ti := y*dst.w + x
			switch d.blend {
			case gpu.BlendAdditive:
				src = src.Add(dst.texel(ti))
			case gpu.BlendPremultiplied:
				src = src.Add(dst.texel(ti).Mul(1 - src[3]))
			}
			dst.store(ti, src)
		}
	}
}

func (d *Device) ReadPixels(x, y, w, h int, dst []float32) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("soft: invalid read size %dx%d", w, h)
	}
	if len(dst) < w*h*4 {
		return fmt.Errorf("soft: read buffer holds %d floats, need %d", len(dst), w*h*4)
	}
	src := d.target
	if src == nil {
		return errors.New("soft: no framebuffer bound")
	}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			o := (j*w + i) * 4
			sx, sy := x+i, y+j
			if sx < 0 || sy < 0 || sx >= src.w || sy >= src.h {
				clear(dst[o : o+4])
				continue
			}
			v := src.texel(sy*src.w + sx)
			copy(dst[o:o+4], v[:])
		}
	}
	return nil
}

// Pixels returns a copy of t as RGBA float32 with missing channels filled
// the way a sampler would return them.
func (d *Device) Pixels(t gpu.Texture) (data []float32, w, h int) {
	tex := d.textures[t]
	if tex == nil {
		return nil, 0, 0
	}
	data = make([]float32, tex.w*tex.h*4)
	for i := 0; i < tex.w*tex.h; i++ {
		v := tex.texel(i)
		copy(data[i*4:i*4+4], v[:])
	}
	return data, tex.w, tex.h
}

// store writes c to texel i, dropping components the format cannot hold.
func (t *texture) store(i int, c mgl32.Vec4) {
	if t.format == gpu.FormatRGBA8 {
		for k := range c {
			c[k] = mgl32.Clamp(c[k], 0, 1)
		}
	}
	copy(t.data[i*4:i*4+4], c[:])
}

// texel reads texel i; channels the format lacks read as (0, 0, 1).
func (t *texture) texel(i int) mgl32.Vec4 {
	v := mgl32.Vec4{t.data[i*4], t.data[i*4+1], t.data[i*4+2], t.data[i*4+3]}
	if ch := t.format.Channels(); ch < 4 {
		for k := ch; k < 3; k++ {
			v[k] = 0
		}
		v[3] = 1
	}
	return v
}

func (t *texture) address(i, n int) int {
	if t.wrap == gpu.WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return max(0, min(i, n-1))
}

func (t *texture) fetch(x, y int) mgl32.Vec4 {
	return t.texel(t.address(y, t.h)*t.w + t.address(x, t.w))
}

func (t *texture) sample(uv mgl32.Vec2) mgl32.Vec4 {
	if !t.linear {
		x := int(math.Floor(float64(uv[0] * float32(t.w))))
		y := int(math.Floor(float64(uv[1] * float32(t.h))))
		return t.fetch(x, y)
	}
	sx := uv[0]*float32(t.w) - 0.5
	sy := uv[1]*float32(t.h) - 0.5
	fx0 := float32(math.Floor(float64(sx)))
	fy0 := float32(math.Floor(float64(sy)))
	fx, fy := sx-fx0, sy-fy0
	x0, y0 := int(fx0), int(fy0)

	a := t.fetch(x0, y0)
	b := t.fetch(x0+1, y0)
	c := t.fetch(x0, y0+1)
	e := t.fetch(x0+1, y0+1)
	return mix(mix(a, b, fx), mix(c, e, fx), fy)
}

func mix(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

type fragment struct {
	dev  *Device
	prog *program
	uv   mgl32.Vec2
}

func (f *fragment) value(name string) [4]float32 {
	if loc, ok := f.prog.locs[name]; ok {
		return f.prog.values[loc]
	}
	return [4]float32{}
}

func (f *fragment) UV() mgl32.Vec2 { return f.uv }

func (f *fragment) Float(name string) float32 { return f.value(name)[0] }

func (f *fragment) Vec2(name string) mgl32.Vec2 {
	v := f.value(name)
	return mgl32.Vec2{v[0], v[1]}
}

func (f *fragment) Vec3(name string) mgl32.Vec3 {
	v := f.value(name)
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func (f *fragment) Vec4(name string) mgl32.Vec4 { return mgl32.Vec4(f.value(name)) }

func (f *fragment) Sample(sampler string, uv mgl32.Vec2) mgl32.Vec4 {
	unit := int(f.value(sampler)[0])
	if unit < 0 || unit >= maxUnits {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	tex := f.dev.textures[f.dev.units[unit]]
	if tex == nil {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	return tex.sample(uv)
}

func (f *fragment) Defined(keyword string) bool { return f.prog.defines[keyword] }
