package gldevice

import (
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/fluidball/gpu"
)

func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	vs, err := compileShader(src.Name, "vertex", src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(src.Name, "fragment", src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.BindAttribLocation(prog, 0, gl.Str("aPosition\x00"))
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, &gpu.ShaderCompileError{Program: src.Name, Stage: "link", Log: strings.TrimRight(log, "\x00")}
	}
	return gpu.Program(prog), nil
}

func compileShader(name, stage, source string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, &gpu.ShaderCompileError{Program: name, Stage: stage, Log: strings.TrimRight(string(log), "\x00")}
	}
	return shader, nil
}

func (d *Device) DeleteProgram(p gpu.Program) { gl.DeleteProgram(uint32(p)) }

func (d *Device) UseProgram(p gpu.Program) { gl.UseProgram(uint32(p)) }

func (d *Device) UniformLocation(p gpu.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Device) SetUniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (d *Device) SetUniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }

func (d *Device) SetUniform2f(loc int32, x, y float32) { gl.Uniform2f(loc, x, y) }

func (d *Device) SetUniform3f(loc int32, x, y, z float32) { gl.Uniform3f(loc, x, y, z) }

func (d *Device) SetUniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }
