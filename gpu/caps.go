package gpu

import "log/slog"

// probeSize is the edge of the test surface used to check renderability.
const probeSize = 4

// Candidates lists formats to probe per channel count, most preferred first.
type Candidates struct {
	RGBA []Format
	RG   []Format
	R    []Format
}

// DefaultCandidates prefers half floats and falls back to full floats.
var DefaultCandidates = Candidates{
	RGBA: []Format{FormatRGBA16F, FormatRGBA32F},
	RG:   []Format{FormatRG16F, FormatRG32F},
	R:    []Format{FormatR16F, FormatR32F},
}

// Capabilities is the outcome of negotiation.
type Capabilities struct {
	RGBA            Format
	RG              Format
	R               Format
	TexType         PixelType
	LinearFiltering bool
}

func (c Capabilities) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("rgba", c.RGBA.String()),
		slog.String("rg", c.RG.String()),
		slog.String("r", c.R.String()),
		slog.String("type", c.TexType.String()),
		slog.Bool("linear_filtering", c.LinearFiltering),
	)
}

// Negotiate probes dev for renderable formats. A slot whose candidates all
// fail falls back to the slot with more channels; the 4-channel slot falls
// back to RGBA8, which every device must render.
func Negotiate(dev Device, c Candidates) Capabilities {
	rgba := firstRenderable(dev, c.RGBA)
	if rgba == FormatNone {
		rgba = FormatRGBA8
	}
	rg := firstRenderable(dev, c.RG)
	if rg == FormatNone {
		rg = rgba
	}
	r := firstRenderable(dev, c.R)
	if r == FormatNone {
		r = rg
	}

	return Capabilities{
		RGBA:            rgba,
		RG:              rg,
		R:               r,
		TexType:         rgba.Type(),
		LinearFiltering: dev.SupportsLinearFiltering(rgba),
	}
}

func firstRenderable(dev Device, formats []Format) Format {
	for _, f := range formats {
		if Renderable(dev, f) {
			return f
		}
	}
	return FormatNone
}

// Renderable creates a small texture and framebuffer of format f and
// reports whether the framebuffer is complete. Probe resources are freed.
func Renderable(dev Device, f Format) bool {
	tex, err := dev.NewTexture(probeSize, probeSize, f, FilterNearest, WrapClamp)
	if err != nil {
		return false
	}
	defer dev.DeleteTexture(tex)

	fb, err := dev.NewFramebuffer(tex)
	if err != nil {
		return false
	}
	dev.DeleteFramebuffer(fb)
	return true
}
