package fluid

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/fluidball/gpu"
)

const (
	ditherSize   = 64
	ditherPeriod = 32.0 // noise features across one tile
)

// ditherPixels is a tileable size×size field of OpenSimplex noise in 0..1.
// Each axis is wrapped onto a circle of the 4D noise space, so the left and
// right (and top and bottom) edges meet seamlessly under repeat wrapping.
func ditherPixels(seed int64, size int) []float32 {
	noise := opensimplex.NewNormalized(seed)
	r := ditherPeriod / (2 * math.Pi)
	out := make([]float32, size*size*4)
	for y := range size {
		b := 2 * math.Pi * float64(y) / float64(size)
		for x := range size {
			a := 2 * math.Pi * float64(x) / float64(size)
			v := float32(noise.Eval4(r*math.Cos(a), r*math.Sin(a), r*math.Cos(b), r*math.Sin(b)))
			i := (y*size + x) * 4
			out[i], out[i+1], out[i+2], out[i+3] = v, v, v, 1
		}
	}
	return out
}

func (e *Engine) createDither() error {
	tex, err := e.dev.NewTexture(ditherSize, ditherSize, gpu.FormatRGBA8, gpu.FilterLinear, gpu.WrapRepeat)
	if err != nil {
		return &gpu.AllocationError{Resource: "dither texture", Width: ditherSize, Height: ditherSize, Format: gpu.FormatRGBA8, Err: err}
	}
	if err := e.dev.UploadTexture(tex, ditherSize, ditherSize, ditherPixels(e.ditherSeed, ditherSize)); err != nil {
		e.dev.DeleteTexture(tex)
		return fmt.Errorf("uploading dither texture: %w", err)
	}
	e.dither, e.ditherSize = tex, ditherSize
	return nil
}
