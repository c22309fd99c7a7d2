// Package glsl holds the small amount of GLSL source handling the renderer
// needs: keyword injection and uniform declaration parsing.
package glsl

import (
	"bufio"
	"regexp"
	"strings"
)

// Type is a GLSL uniform type the renderer knows how to set.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeFloat
	TypeInt
	TypeSampler2D
	TypeVec2
	TypeVec3
	TypeVec4
)

var typeNames = map[string]Type{
	"float":     TypeFloat,
	"int":       TypeInt,
	"sampler2D": TypeSampler2D,
	"vec2":      TypeVec2,
	"vec3":      TypeVec3,
	"vec4":      TypeVec4,
}

func (t Type) String() string {
	for name, v := range typeNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// Uniform is one `uniform <type> <name>;` declaration.
type Uniform struct {
	Name string
	Type Type
}

var (
	uniformRe = regexp.MustCompile(`^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
	defineRe  = regexp.MustCompile(`^\s*#define\s+(\w+)\s*$`)
	vertexRe  = regexp.MustCompile(`^\s*//\s*vertex:\s*(\S+)\s*$`)
)

// ParseUniforms returns the uniform declarations of src in order. A name
// declared in more than one place (for example both stages) is reported
// once.
func ParseUniforms(src ...string) []Uniform {
	var out []Uniform
	seen := make(map[string]bool)
	for _, s := range src {
		sc := bufio.NewScanner(strings.NewReader(s))
		for sc.Scan() {
			m := uniformRe.FindStringSubmatch(sc.Text())
			if m == nil || seen[m[2]] {
				continue
			}
			seen[m[2]] = true
			out = append(out, Uniform{Name: m[2], Type: typeNames[m[1]]})
		}
	}
	return out
}

// Defines returns the value-less `#define NAME` keywords in src.
func Defines(src string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		if m := defineRe.FindStringSubmatch(sc.Text()); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

// VertexDirective returns the file named by a `// vertex: <file>` comment
// in a fragment source, or "" when there is none.
func VertexDirective(src string) string {
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		if m := vertexRe.FindStringSubmatch(sc.Text()); m != nil {
			return m[1]
		}
	}
	return ""
}

// InjectDefines inserts one `#define` line per keyword. The lines go after
// the `#version` directive when there is one, since it must stay first.
func InjectDefines(src string, keywords []string) string {
	if len(keywords) == 0 {
		return src
	}
	var b strings.Builder
	for _, k := range keywords {
		b.WriteString("#define ")
		b.WriteString(k)
		b.WriteByte('\n')
	}
	defines := b.String()

	trimmed := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(trimmed, "#version") {
		return defines + src
	}
	offset := len(src) - len(trimmed)
	eol := strings.IndexByte(trimmed, '\n')
	if eol < 0 {
		return src + "\n" + defines
	}
	cut := offset + eol + 1
	return src[:cut] + defines + src[cut:]
}
