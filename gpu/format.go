// Package gpu defines the narrow GPU surface used by the fluid pipeline:
// formats, resource handles, the Device contract, capability negotiation
// and typed uniform handles.
package gpu

// Format is a render target storage format.
type Format uint8

const (
	FormatNone Format = iota
	FormatR16F
	FormatRG16F
	FormatRGBA16F
	FormatR32F
	FormatRG32F
	FormatRGBA32F
	FormatRGBA8
)

// PixelType is the component type of a format.
type PixelType uint8

const (
	PixelUnsignedByte PixelType = iota
	PixelHalfFloat
	PixelFloat
)

func (t PixelType) String() string {
	switch t {
	case PixelHalfFloat:
		return "half_float"
	case PixelFloat:
		return "float"
	default:
		return "unsigned_byte"
	}
}

// Channels returns the number of stored components.
func (f Format) Channels() int {
	switch f {
	case FormatR16F, FormatR32F:
		return 1
	case FormatRG16F, FormatRG32F:
		return 2
	case FormatRGBA16F, FormatRGBA32F, FormatRGBA8:
		return 4
	}
	return 0
}

// Type returns the component type.
func (f Format) Type() PixelType {
	switch f {
	case FormatR16F, FormatRG16F, FormatRGBA16F:
		return PixelHalfFloat
	case FormatR32F, FormatRG32F, FormatRGBA32F:
		return PixelFloat
	}
	return PixelUnsignedByte
}

// Float reports whether the format stores unclamped floating point values.
func (f Format) Float() bool {
	return f.Type() != PixelUnsignedByte
}

func (f Format) String() string {
	switch f {
	case FormatR16F:
		return "R16F"
	case FormatRG16F:
		return "RG16F"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatR32F:
		return "R32F"
	case FormatRG32F:
		return "RG32F"
	case FormatRGBA32F:
		return "RGBA32F"
	case FormatRGBA8:
		return "RGBA8"
	}
	return "none"
}

// Filter is the texture sampling mode.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

func (f Filter) String() string {
	if f == FilterLinear {
		return "linear"
	}
	return "nearest"
}

// Wrap is the texture addressing mode.
type Wrap uint8

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

// BlendMode selects the fixed-function blend state for draws.
type BlendMode uint8

const (
	// BlendNone overwrites the destination.
	BlendNone BlendMode = iota
	// BlendAdditive is ONE, ONE.
	BlendAdditive
	// BlendPremultiplied is ONE, ONE_MINUS_SRC_ALPHA.
	BlendPremultiplied
)

// Handles are opaque, device-issued identifiers. Zero is never a valid
// texture or program; Framebuffer zero is the host back buffer.
type (
	Texture     uint32
	Framebuffer uint32
	Program     uint32
)

// DefaultFramebuffer is the host back buffer.
const DefaultFramebuffer Framebuffer = 0
