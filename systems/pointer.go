package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/fluidball/fluid"
)

// Pointer tracks a mouse drag in normalized coordinates and turns its
// motion into splats.
type Pointer struct {
	Down         bool
	Moved        bool
	X, Y         float32
	PrevX, PrevY float32
	DX, DY       float32
	Color        mgl32.Vec3
}

// Press starts a drag at (x, y).
func (p *Pointer) Press(x, y float32, color mgl32.Vec3) {
	p.Down, p.Moved = true, false
	p.X, p.Y = x, y
	p.PrevX, p.PrevY = x, y
	p.DX, p.DY = 0, 0
	p.Color = color
}

// Move follows the drag to (x, y). Deltas are scaled so a stroke covers
// the same distance in both axes of a non-square view.
func (p *Pointer) Move(x, y, aspect float32) {
	if !p.Down {
		return
	}
	p.PrevX, p.PrevY = p.X, p.Y
	p.X, p.Y = x, y
	p.DX = correctDeltaX(x-p.PrevX, aspect)
	p.DY = correctDeltaY(y-p.PrevY, aspect)
	p.Moved = p.DX != 0 || p.DY != 0
}

// Release ends the drag.
func (p *Pointer) Release() {
	p.Down, p.Moved = false, false
}

// Splat consumes pending motion as a splat with velocity delta×force.
func (p *Pointer) Splat(force float32) (fluid.SplatRequest, bool) {
	if !p.Moved {
		return fluid.SplatRequest{}, false
	}
	p.Moved = false
	return fluid.SplatRequest{
		X: p.X, Y: p.Y,
		DX: p.DX * force, DY: p.DY * force,
		Color: p.Color,
	}, true
}

func correctDeltaX(d, aspect float32) float32 {
	if aspect < 1 {
		d *= aspect
	}
	return d
}

func correctDeltaY(d, aspect float32) float32 {
	if aspect > 1 {
		d /= aspect
	}
	return d
}
