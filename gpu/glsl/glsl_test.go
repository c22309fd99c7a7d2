package glsl

import (
	"strings"
	"testing"
)

const sample = `#version 330 core
precision highp float;
uniform sampler2D uVelocity;
uniform vec2 texelSize;
uniform highp float dt;
in vec2 vUv;
out vec4 fragColor;
void main() { fragColor = vec4(0.0); }
`

func TestParseUniforms(t *testing.T) {
	got := ParseUniforms(sample)
	want := []Uniform{
		{Name: "uVelocity", Type: TypeSampler2D},
		{Name: "texelSize", Type: TypeVec2},
		{Name: "dt", Type: TypeFloat},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d uniforms, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniform %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseUniforms_DedupAcrossStages(t *testing.T) {
	vert := "uniform vec2 texelSize;\n"
	got := ParseUniforms(vert, sample)
	count := 0
	for _, u := range got {
		if u.Name == "texelSize" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("texelSize reported %d times, want 1", count)
	}
}

func TestInjectDefines_AfterVersion(t *testing.T) {
	out := InjectDefines(sample, []string{"BLOOM", "SHADING"})
	lines := strings.Split(out, "\n")
	if lines[0] != "#version 330 core" {
		t.Fatalf("first line = %q, want #version", lines[0])
	}
	if lines[1] != "#define BLOOM" || lines[2] != "#define SHADING" {
		t.Errorf("defines not injected after version: %q", lines[1:3])
	}

	defs := Defines(out)
	if len(defs) != 2 || defs[0] != "BLOOM" || defs[1] != "SHADING" {
		t.Errorf("Defines() = %v", defs)
	}
}

func TestInjectDefines_NoVersion(t *testing.T) {
	out := InjectDefines("void main() {}\n", []string{"X"})
	if !strings.HasPrefix(out, "#define X\n") {
		t.Errorf("got %q", out)
	}
	if InjectDefines(sample, nil) != sample {
		t.Error("empty keyword list must leave source untouched")
	}
}
