package renderer

import (
	"errors"
	"slices"
	"strings"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/glsl"
)

// Variant is one compiled keyword combination of a program with its
// uniforms resolved against that program.
type Variant[U any] struct {
	Program  gpu.Program
	Keywords []string
	Uniforms U
}

// Material compiles and caches the keyword variants of one program.
type Material[U any] struct {
	ctx      *Context
	src      gpu.ProgramSource
	bind     func(gpu.Device, gpu.Program) U
	variants map[string]*Variant[U]
}

// NewMaterial creates an empty cache for src. bind is the generated
// uniform binder of the program. Nothing is compiled until Use.
func NewMaterial[U any](ctx *Context, src gpu.ProgramSource, bind func(gpu.Device, gpu.Program) U) *Material[U] {
	return &Material[U]{
		ctx:      ctx,
		src:      src,
		bind:     bind,
		variants: make(map[string]*Variant[U]),
	}
}

// variantKey normalises a keyword set: order and duplicates do not matter.
func variantKey(keywords []string) (string, []string) {
	kw := slices.Clone(keywords)
	slices.Sort(kw)
	kw = slices.Compact(kw)
	return strings.Join(kw, "|"), kw
}

// Use returns the variant for keywords, compiling it on first request, and
// makes it the active program. Failures are not cached.
func (m *Material[U]) Use(keywords ...string) (*Variant[U], error) {
	key, kw := variantKey(keywords)
	v, ok := m.variants[key]
	if !ok {
		var err error
		v, err = m.compile(kw)
		if err != nil {
			m.ctx.log.Error("shader compile failed", "program", m.src.Name, "keywords", kw, "error", err)
			return nil, err
		}
		m.variants[key] = v
		m.ctx.log.Debug("shader variant compiled", "program", m.src.Name, "keywords", kw)
	}
	m.ctx.UseProgram(v.Program)
	return v, nil
}

func (m *Material[U]) compile(kw []string) (*Variant[U], error) {
	src := m.src
	src.Fragment = glsl.InjectDefines(src.Fragment, kw)

	p, err := m.ctx.dev.CompileProgram(src)
	if err != nil {
		var ce *gpu.ShaderCompileError
		if errors.As(err, &ce) {
			ce.Keywords = kw
		}
		return nil, err
	}
	return &Variant[U]{Program: p, Keywords: kw, Uniforms: m.bind(m.ctx.dev, p)}, nil
}

// Name is the program name.
func (m *Material[U]) Name() string { return m.src.Name }

// Len is the number of compiled variants.
func (m *Material[U]) Len() int { return len(m.variants) }

// Release deletes every compiled variant.
func (m *Material[U]) Release() {
	for key, v := range m.variants {
		if m.ctx.active == v.Program {
			m.ctx.Invalidate()
		}
		m.ctx.dev.DeleteProgram(v.Program)
		delete(m.variants, key)
	}
}
