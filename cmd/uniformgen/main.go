// Command uniformgen writes one typed uniform struct per GLSL program.
//
// Every <name>.frag in -dir is a program; its vertex stage is the file
// named by a `// vertex: <file>` comment, or base.vert. The struct holds a
// gpu handle for every uniform the two stages declare, and a Bind function
// resolves them against a linked program.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pthm-cable/fluidball/gpu/glsl"
)

func main() {
	dir := flag.String("dir", "glsl", "Directory holding .vert and .frag sources")
	out := flag.String("out", "uniforms_gen.go", "Output Go file")
	pkg := flag.String("package", "shaders", "Package name of the output file")
	flag.Parse()

	programs, err := loadPrograms(*dir)
	if err != nil {
		slog.Error("loading shaders", "error", err)
		os.Exit(1)
	}

	src, err := generate(*pkg, programs)
	if err != nil {
		slog.Error("generating uniforms", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, src, 0644); err != nil {
		slog.Error("writing output", "path", *out, "error", err)
		os.Exit(1)
	}
	slog.Info("uniforms generated", "programs", len(programs), "out", *out)
}

type program struct {
	name     string
	uniforms []glsl.Uniform
}

func loadPrograms(dir string) ([]program, error) {
	frags, err := filepath.Glob(filepath.Join(dir, "*.frag"))
	if err != nil {
		return nil, err
	}
	sort.Strings(frags)

	var programs []program
	for _, path := range frags {
		frag, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		vertName := glsl.VertexDirective(string(frag))
		if vertName == "" {
			vertName = "base.vert"
		}
		vert, err := os.ReadFile(filepath.Join(dir, vertName))
		if err != nil {
			return nil, fmt.Errorf("reading vertex stage of %s: %w", path, err)
		}
		programs = append(programs, program{
			name:     strings.TrimSuffix(filepath.Base(path), ".frag"),
			uniforms: glsl.ParseUniforms(string(vert), string(frag)),
		})
	}
	return programs, nil
}

var handleTypes = map[glsl.Type]string{
	glsl.TypeFloat:     "Float",
	glsl.TypeInt:       "Int",
	glsl.TypeSampler2D: "Sampler",
	glsl.TypeVec2:      "Vec2",
	glsl.TypeVec3:      "Vec3",
	glsl.TypeVec4:      "Vec4",
}

func generate(pkg string, programs []program) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by uniformgen. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	fmt.Fprintf(&b, "import \"github.com/pthm-cable/fluidball/gpu\"\n")

	for _, p := range programs {
		typeName := exportName(p.name) + "Uniforms"
		fmt.Fprintf(&b, "\n// %s holds the uniforms of the %s program.\n", typeName, p.name)
		fmt.Fprintf(&b, "type %s struct {\n", typeName)
		fields := make(map[string]string)
		for _, u := range p.uniforms {
			if prev, dup := fields[fieldName(u.Name)]; dup {
				return nil, fmt.Errorf("%s: uniforms %s and %s map to the same field", p.name, prev, u.Name)
			}
			fields[fieldName(u.Name)] = u.Name
			ht, ok := handleTypes[u.Type]
			if !ok {
				return nil, fmt.Errorf("%s: uniform %s has unsupported type", p.name, u.Name)
			}
			fmt.Fprintf(&b, "\t%s gpu.%s\n", fieldName(u.Name), ht)
		}
		fmt.Fprintf(&b, "}\n\n")

		fmt.Fprintf(&b, "// Bind%s resolves the %s uniforms against p.\n", typeName, p.name)
		fmt.Fprintf(&b, "func Bind%s(dev gpu.Device, p gpu.Program) %s {\n", typeName, typeName)
		fmt.Fprintf(&b, "\treturn %s{\n", typeName)
		for _, u := range p.uniforms {
			fmt.Fprintf(&b, "\t\t%s: gpu.Lookup%s(dev, p, %q),\n", fieldName(u.Name), handleTypes[u.Type], u.Name)
		}
		fmt.Fprintf(&b, "\t}\n}\n")
	}

	return format.Source(b.Bytes())
}

// exportName turns snake_case into CamelCase.
func exportName(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// fieldName drops the sampler prefix (uTexture -> Texture) and exports.
func fieldName(s string) string {
	if len(s) > 1 && s[0] == 'u' && unicode.IsUpper(rune(s[1])) {
		s = s[1:]
	}
	if s == "dt" {
		return "DT"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
