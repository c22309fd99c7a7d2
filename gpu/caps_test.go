package gpu_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/soft"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name string
		opts soft.Options
		want gpu.Capabilities
	}{
		{
			name: "all half floats",
			opts: soft.Options{},
			want: gpu.Capabilities{
				RGBA: gpu.FormatRGBA16F, RG: gpu.FormatRG16F, R: gpu.FormatR16F,
				TexType: gpu.PixelHalfFloat, LinearFiltering: true,
			},
		},
		{
			name: "single channel falls back to two",
			opts: soft.Options{Renderable: []gpu.Format{gpu.FormatRGBA16F, gpu.FormatRG16F, gpu.FormatRGBA8}},
			want: gpu.Capabilities{
				RGBA: gpu.FormatRGBA16F, RG: gpu.FormatRG16F, R: gpu.FormatRG16F,
				TexType: gpu.PixelHalfFloat, LinearFiltering: true,
			},
		},
		{
			name: "only four channel floats",
			opts: soft.Options{Renderable: []gpu.Format{gpu.FormatRGBA32F, gpu.FormatRGBA8}, NoFloatLinear: true},
			want: gpu.Capabilities{
				RGBA: gpu.FormatRGBA32F, RG: gpu.FormatRGBA32F, R: gpu.FormatRGBA32F,
				TexType: gpu.PixelFloat, LinearFiltering: false,
			},
		},
		{
			name: "no float targets",
			opts: soft.Options{Renderable: []gpu.Format{gpu.FormatRGBA8}},
			want: gpu.Capabilities{
				RGBA: gpu.FormatRGBA8, RG: gpu.FormatRGBA8, R: gpu.FormatRGBA8,
				TexType: gpu.PixelUnsignedByte, LinearFiltering: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := soft.New(tt.opts)
			got := gpu.Negotiate(dev, gpu.DefaultCandidates)
			if got != tt.want {
				t.Errorf("Negotiate() = %+v, want %+v", got, tt.want)
			}
			st := dev.Stats()
			if st.Textures != 0 || st.Framebuffers != 0 {
				t.Errorf("probe leaked %d textures, %d framebuffers", st.Textures, st.Framebuffers)
			}
		})
	}
}

func TestAllocationErrorUnwraps(t *testing.T) {
	err := &gpu.AllocationError{Resource: "framebuffer", Width: 4, Height: 4, Format: gpu.FormatR16F, Err: gpu.ErrIncompleteFramebuffer}
	if !errors.Is(err, gpu.ErrIncompleteFramebuffer) {
		t.Error("AllocationError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "4x4 R16F") {
		t.Errorf("message %q lacks size and format", err.Error())
	}
}

func TestShaderCompileErrorMessage(t *testing.T) {
	err := &gpu.ShaderCompileError{Program: "display", Stage: "fragment", Keywords: []string{"BLOOM"}, Log: "0:12: error\n"}
	msg := err.Error()
	for _, want := range []string{"display", "[BLOOM]", "fragment", "0:12: error"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
