package gpu

import "github.com/go-gl/mathgl/mgl32"

// Typed uniform handles. Each is bound to one program's location; setting
// a handle whose location is -1 is a no-op. Handles write to the program
// currently in use, so callers bind the owning program first.

type Float struct {
	dev Device
	loc int32
}

func LookupFloat(dev Device, p Program, name string) Float {
	return Float{dev: dev, loc: dev.UniformLocation(p, name)}
}

func (u Float) Set(v float32) {
	if u.loc >= 0 {
		u.dev.SetUniform1f(u.loc, v)
	}
}

func (u Float) Location() int32 { return u.loc }

type Int struct {
	dev Device
	loc int32
}

func LookupInt(dev Device, p Program, name string) Int {
	return Int{dev: dev, loc: dev.UniformLocation(p, name)}
}

func (u Int) Set(v int32) {
	if u.loc >= 0 {
		u.dev.SetUniform1i(u.loc, v)
	}
}

func (u Int) Location() int32 { return u.loc }

// Sampler is a sampler2D uniform; its value is a texture unit.
type Sampler struct {
	dev Device
	loc int32
}

func LookupSampler(dev Device, p Program, name string) Sampler {
	return Sampler{dev: dev, loc: dev.UniformLocation(p, name)}
}

func (u Sampler) Set(unit int) {
	if u.loc >= 0 {
		u.dev.SetUniform1i(u.loc, int32(unit))
	}
}

func (u Sampler) Location() int32 { return u.loc }

type Vec2 struct {
	dev Device
	loc int32
}

func LookupVec2(dev Device, p Program, name string) Vec2 {
	return Vec2{dev: dev, loc: dev.UniformLocation(p, name)}
}

func (u Vec2) Set(x, y float32) {
	if u.loc >= 0 {
		u.dev.SetUniform2f(u.loc, x, y)
	}
}

func (u Vec2) SetVec(v mgl32.Vec2) { u.Set(v[0], v[1]) }

func (u Vec2) Location() int32 { return u.loc }

type Vec3 struct {
	dev Device
	loc int32
}

func LookupVec3(dev Device, p Program, name string) Vec3 {
	return Vec3{dev: dev, loc: dev.UniformLocation(p, name)}
}

func (u Vec3) Set(x, y, z float32) {
	if u.loc >= 0 {
		u.dev.SetUniform3f(u.loc, x, y, z)
	}
}

func (u Vec3) SetVec(v mgl32.Vec3) { u.Set(v[0], v[1], v[2]) }

func (u Vec3) Location() int32 { return u.loc }

type Vec4 struct {
	dev Device
	loc int32
}

func LookupVec4(dev Device, p Program, name string) Vec4 {
	return Vec4{dev: dev, loc: dev.UniformLocation(p, name)}
}

func (u Vec4) Set(x, y, z, w float32) {
	if u.loc >= 0 {
		u.dev.SetUniform4f(u.loc, x, y, z, w)
	}
}

func (u Vec4) SetVec(v mgl32.Vec4) { u.Set(v[0], v[1], v[2], v[3]) }

func (u Vec4) Location() int32 { return u.loc }
