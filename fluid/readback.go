package fluid

import (
	"fmt"
	"image"

	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/renderer"
	"github.com/pthm-cable/fluidball/telemetry"
)

// sampleSize is the edge of the velocity block averaged by SampleVelocity.
const sampleSize = 4

// SampleVelocity averages a 4×4 block of the velocity grid around (x, y)
// and returns it in normalized units per second. The block is clamped
// inside the grid. The readback stalls until the GPU has finished every
// queued pass, so the value is current but the call is not free.
func (e *Engine) SampleVelocity(x, y float32) (dx, dy float32, err error) {
	e.timer.StartPhase(telemetry.PhaseReadback)
	v := e.fields.velocity
	w, h := v.Width(), v.Height()
	x0 := clampInt(int(x*float32(w))-sampleSize/2, 0, max(w-sampleSize, 0))
	y0 := clampInt(int(y*float32(h))-sampleSize/2, 0, max(h-sampleSize, 0))

	v.Read().Bind()
	if err := e.dev.ReadPixels(x0, y0, sampleSize, sampleSize, e.readback[:]); err != nil {
		return 0, 0, fmt.Errorf("reading velocity: %w", err)
	}

	var vx, vy float32
	for i := 0; i < len(e.readback); i += 4 {
		vx += e.readback[i]
		vy += e.readback[i+1]
	}
	const n = sampleSize * sampleSize
	return vx / n / float32(w), vy / n / float32(h), nil
}

func clampInt(v, lo, hi int) int { return max(lo, min(v, hi)) }

// Capture renders the current frame off screen at the capture resolution
// and returns it as an 8-bit image, top row first.
func (e *Engine) Capture() (*image.RGBA, error) {
	w, h := renderer.Resolution(e.viewW, e.viewH, e.cfg.CaptureResolution)
	target, err := e.ctx.Create(w, h, e.caps.RGBA, gpu.FilterNearest)
	if err != nil {
		return nil, err
	}
	defer target.Release()

	if err := e.Render(target); err != nil {
		return nil, err
	}

	e.timer.StartPhase(telemetry.PhaseReadback)
	pixels := make([]float32, w*h*4)
	target.Bind()
	if err := e.dev.ReadPixels(0, 0, w, h, pixels); err != nil {
		return nil, fmt.Errorf("reading capture: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		// GL rows start at the bottom.
		row := img.Pix[(h-1-y)*img.Stride:]
		src := pixels[y*w*4 : (y+1)*w*4]
		for i, v := range src {
			row[i] = uint8(max(0, min(v, 1)) * 255)
		}
	}
	return img, nil
}
