// Package shaders embeds the GLSL programs of the fluid pipeline, their
// reference kernels for the software device, and the uniform structs
// generated from the GLSL declarations.
package shaders

//go:generate go run ../cmd/uniformgen -dir glsl -out uniforms_gen.go

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/glsl"
)

//go:embed glsl/*.vert glsl/*.frag
var files embed.FS

// Program names, one per fragment source.
const (
	Advection        = "advection"
	BloomBlur        = "bloom_blur"
	BloomFinal       = "bloom_final"
	BloomPrefilter   = "bloom_prefilter"
	Blur             = "blur"
	Checkerboard     = "checkerboard"
	Color            = "color"
	Copy             = "copy"
	Curl             = "curl"
	Display          = "display"
	Divergence       = "divergence"
	GradientSubtract = "gradient_subtract"
	Pressure         = "pressure"
	Splat            = "splat"
	Sunrays          = "sunrays"
	SunraysMask      = "sunrays_mask"
	Vorticity        = "vorticity"
)

// Compile-time keywords.
const (
	KeywordShading         = "SHADING"
	KeywordBloom           = "BLOOM"
	KeywordSunrays         = "SUNRAYS"
	KeywordManualFiltering = "MANUAL_FILTERING"
)

// DefaultVertex is the vertex stage of fragment sources without a
// `// vertex:` directive.
const DefaultVertex = "base.vert"

var references = map[string]gpu.Kernel{
	Advection:        advection,
	BloomBlur:        bloomBlur,
	BloomFinal:       bloomFinal,
	BloomPrefilter:   bloomPrefilter,
	Blur:             blur,
	Checkerboard:     checkerboard,
	Color:            color,
	Copy:             copyTexture,
	Curl:             curl,
	Display:          display,
	Divergence:       divergence,
	GradientSubtract: gradientSubtract,
	Pressure:         pressure,
	Splat:            splat,
	Sunrays:          sunrays,
	SunraysMask:      sunraysMask,
	Vorticity:        vorticity,
}

// Source assembles the named program. Names are the constants above, so an
// unknown name is a programming error and panics.
func Source(name string) gpu.ProgramSource {
	frag, err := files.ReadFile("glsl/" + name + ".frag")
	if err != nil {
		panic(fmt.Sprintf("shaders: unknown program %q", name))
	}
	vertName := glsl.VertexDirective(string(frag))
	if vertName == "" {
		vertName = DefaultVertex
	}
	vert, err := files.ReadFile("glsl/" + vertName)
	if err != nil {
		panic(fmt.Sprintf("shaders: program %q names missing vertex stage %q", name, vertName))
	}
	return gpu.ProgramSource{
		Name:      name,
		Vertex:    string(vert),
		Fragment:  string(frag),
		Reference: references[name],
	}
}

// Names lists every embedded program, sorted.
func Names() []string {
	entries, err := fs.ReadDir(files, "glsl")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".frag"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
