package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidball/components"
	"github.com/pthm-cable/fluidball/fluid"
)

// SourceDrainer injects pressure, and dye for sources, at a normalized
// point.
type SourceDrainer interface {
	SourceDrain(x, y, strength float32, color mgl32.Vec3, radius float32) error
}

// EmitterSystem drives every emitter into the fluid once per frame.
type EmitterSystem struct {
	filter *ecs.Filter2[components.Position, components.Emitter]
	fluid  SourceDrainer
}

// NewEmitterSystem creates an emitter system writing into f.
func NewEmitterSystem(w *ecs.World, f SourceDrainer) *EmitterSystem {
	return &EmitterSystem{
		filter: ecs.NewFilter2[components.Position, components.Emitter](w),
		fluid:  f,
	}
}

// Update applies every emitter. It returns the number applied.
func (s *EmitterSystem) Update() (int, error) {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		pos, em := query.Get()
		if err := s.fluid.SourceDrain(pos.X, pos.Y, em.Strength, fluid.HueColor(em.Hue), em.Radius); err != nil {
			query.Close()
			return n, fmt.Errorf("emitter at (%.2f, %.2f): %w", pos.X, pos.Y, err)
		}
		n++
	}
	return n, nil
}
