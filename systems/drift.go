// Package systems contains ECS systems for the entities on top of the
// fluid.
package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidball/components"
)

// VelocitySampler reads the flow under a normalized point, in normalized
// units per second.
type VelocitySampler interface {
	SampleVelocity(x, y float32) (dx, dy float32, err error)
}

// Goal mouths sit on the left and right edges, centred vertically.
const (
	goalLineLeft  = 0.05
	goalLineRight = 0.95
	goalMouthLo   = 0.44
	goalMouthHi   = 0.56
)

// Bounds is a normalized rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float32
}

func (b Bounds) clamp(x, y float32) (float32, float32) {
	return clampFloat(x, b.MinX, b.MaxX), clampFloat(y, b.MinY, b.MaxY)
}

var (
	// OpenBounds keeps a ball inside the view when goals are off.
	OpenBounds = Bounds{0.01, 0.01, 0.99, 0.99}
	// PitchBounds keeps a ball between the goal lines.
	PitchBounds  = Bounds{goalLineLeft, 0.02, goalLineRight, 0.98}
	leftGoalBox  = Bounds{0.03, goalMouthLo, goalLineLeft, goalMouthHi}
	rightGoalBox = Bounds{goalLineRight, goalMouthLo, 0.97, goalMouthHi}
)

// GoalBoxes returns the left and right goal boxes a captured ball is held in.
func GoalBoxes() (left, right Bounds) {
	return leftGoalBox, rightGoalBox
}

// DriftSystem moves balls with the flow.
type DriftSystem struct {
	filter  *ecs.Filter3[components.Position, components.Velocity, components.Ball]
	sampler VelocitySampler
	goals   bool
}

// NewDriftSystem creates a drift system reading velocity from sampler.
// With goals on, a ball crossing a goal mouth is captured there.
func NewDriftSystem(w *ecs.World, sampler VelocitySampler, goals bool) *DriftSystem {
	return &DriftSystem{
		filter:  ecs.NewFilter3[components.Position, components.Velocity, components.Ball](w),
		sampler: sampler,
		goals:   goals,
	}
}

// SetGoals switches goal capture on or off.
func (s *DriftSystem) SetGoals(on bool) { s.goals = on }

// Update advances every ball by dt seconds and returns how many entered a
// goal this step.
func (s *DriftSystem) Update(dt float32) (scored int, err error) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, ball := query.Get()

		vx, vy, err := s.sampler.SampleVelocity(pos.X, pos.Y)
		if err != nil {
			query.Close()
			return scored, fmt.Errorf("sampling flow under ball: %w", err)
		}
		vel.X, vel.Y = vx, vy
		dx, dy := vx*dt, vy*dt

		if s.goals && !ball.InGoal && crossesGoal(pos.X, pos.Y, dx, dy) {
			ball.InGoal = true
			scored++
		}
		pos.X += dx
		pos.Y += dy

		switch {
		case !s.goals:
			pos.X, pos.Y = OpenBounds.clamp(pos.X, pos.Y)
		case !ball.InGoal:
			pos.X, pos.Y = PitchBounds.clamp(pos.X, pos.Y)
		case pos.X > 0.5:
			pos.X, pos.Y = rightGoalBox.clamp(pos.X, pos.Y)
		default:
			pos.X, pos.Y = leftGoalBox.clamp(pos.X, pos.Y)
		}
	}
	return scored, nil
}

// crossesGoal reports whether the step (dx, dy) from (x, y) crosses a goal
// line inside the mouth.
func crossesGoal(x, y, dx, dy float32) bool {
	var line float32
	switch {
	case x < goalLineRight && x+dx > goalLineRight:
		line = goalLineRight
	case x > goalLineLeft && x+dx < goalLineLeft:
		line = goalLineLeft
	default:
		return false
	}
	yAt := y + dy*(line-x)/dx
	return yAt > goalMouthLo && yAt < goalMouthHi
}

// Reset releases captured balls and moves them back to (x, y).
func (s *DriftSystem) Reset(x, y float32) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, ball := query.Get()
		pos.X, pos.Y = x, y
		vel.X, vel.Y = 0, 0
		ball.InGoal = false
	}
}
