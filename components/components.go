// Package components defines ECS components for the entities that ride on
// top of the fluid. Positions are normalized: (0, 0) is the bottom left of
// the view and (1, 1) the top right.
package components

// Position represents an entity's normalized position.
type Position struct {
	X, Y float32
}

// Velocity is the last flow velocity sampled under an entity, in
// normalized units per second.
type Velocity struct {
	X, Y float32
}

// Ball is carried by the flow.
type Ball struct {
	Radius float32 // fraction of the view height
	InGoal bool    // once set the ball stays pinned inside the goal
}

// Emitter pushes dye and pressure into the fluid every frame.
type Emitter struct {
	Strength float32 // > 0 source, < 0 drain
	Hue      float64 // degrees
	Radius   float32 // splat radius divisor, 100 neutral
}

// IsSource reports whether the emitter adds dye.
func (e *Emitter) IsSource() bool { return e.Strength > 0 }
