package systems

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidball/components"
	"github.com/pthm-cable/fluidball/telemetry"
)

// constantFlow returns the same velocity everywhere.
type constantFlow struct {
	dx, dy float32
	err    error
	calls  int
}

func (f *constantFlow) SampleVelocity(x, y float32) (float32, float32, error) {
	f.calls++
	return f.dx, f.dy, f.err
}

func spawnBall(w *ecs.World, x, y float32) ecs.Entity {
	m := ecs.NewMap3[components.Position, components.Velocity, components.Ball](w)
	return m.NewEntity(&components.Position{X: x, Y: y}, &components.Velocity{}, &components.Ball{Radius: 0.015})
}

func TestDriftFollowsFlow(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnBall(w, 0.5, 0.5)
	flow := &constantFlow{dx: 0.1, dy: -0.2}
	sys := NewDriftSystem(w, flow, false)

	if _, err := sys.Update(0.5); err != nil {
		t.Fatalf("Update: %v", err)
	}
	pos := ecs.NewMap1[components.Position](w).Get(e)
	vel := ecs.NewMap1[components.Velocity](w).Get(e)
	if !mgl32.FloatEqual(pos.X, 0.55) || !mgl32.FloatEqual(pos.Y, 0.4) {
		t.Errorf("position = (%v, %v), want (0.55, 0.4)", pos.X, pos.Y)
	}
	if vel.X != 0.1 || vel.Y != -0.2 {
		t.Errorf("velocity = (%v, %v), want sampled flow", vel.X, vel.Y)
	}
	if flow.calls != 1 {
		t.Errorf("sampled %d times, want 1", flow.calls)
	}
}

func TestDriftClampsToView(t *testing.T) {
	tests := []struct {
		name         string
		dx, dy       float32
		wantX, wantY float32
	}{
		{"right top", 10, 10, 0.99, 0.99},
		{"left bottom", -10, -10, 0.01, 0.01},
		{"still", 0, 0, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e := spawnBall(w, 0.5, 0.5)
			sys := NewDriftSystem(w, &constantFlow{dx: tt.dx, dy: tt.dy}, false)
			if _, err := sys.Update(1); err != nil {
				t.Fatalf("Update: %v", err)
			}
			pos := ecs.NewMap1[components.Position](w).Get(e)
			if pos.X != tt.wantX || pos.Y != tt.wantY {
				t.Errorf("position = (%v, %v), want (%v, %v)", pos.X, pos.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDriftGoalCapture(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnBall(w, 0.9, 0.5)
	sys := NewDriftSystem(w, &constantFlow{dx: 0.2}, true)

	scored, err := sys.Update(1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if scored != 1 {
		t.Fatalf("scored = %d, want 1", scored)
	}
	ball := ecs.NewMap1[components.Ball](w).Get(e)
	pos := ecs.NewMap1[components.Position](w).Get(e)
	if !ball.InGoal {
		t.Error("ball not captured")
	}
	if pos.X != 0.97 || pos.Y != 0.5 {
		t.Errorf("position = (%v, %v), want pinned at (0.97, 0.5)", pos.X, pos.Y)
	}

	// A captured ball does not score again.
	if scored, _ := sys.Update(1); scored != 0 {
		t.Errorf("scored again: %d", scored)
	}

	sys.Reset(0.5, 0.5)
	if ball.InGoal || pos.X != 0.5 {
		t.Error("Reset did not release the ball")
	}
}

func TestDriftMissesGoalOutsideMouth(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnBall(w, 0.1, 0.8)
	sys := NewDriftSystem(w, &constantFlow{dx: -0.2}, true)

	scored, err := sys.Update(1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if scored != 0 {
		t.Errorf("scored = %d outside the mouth", scored)
	}
	pos := ecs.NewMap1[components.Position](w).Get(e)
	if pos.X != goalLineLeft {
		t.Errorf("x = %v, want clamped to the goal line", pos.X)
	}
}

func TestDriftSamplerError(t *testing.T) {
	w := ecs.NewWorld()
	spawnBall(w, 0.5, 0.5)
	spawnBall(w, 0.2, 0.2)
	boom := errors.New("readback failed")
	sys := NewDriftSystem(w, &constantFlow{err: boom}, false)

	if _, err := sys.Update(1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped sampler error", err)
	}
	// The world must still be usable after an aborted query.
	spawnBall(w, 0.3, 0.3)
}

func TestCrossesGoal(t *testing.T) {
	tests := []struct {
		name         string
		x, y, dx, dy float32
		want         bool
	}{
		{"right mouth", 0.94, 0.5, 0.02, 0, true},
		{"left mouth", 0.06, 0.5, -0.02, 0, true},
		{"right post", 0.94, 0.6, 0.02, 0, false},
		{"diagonal into mouth", 0.94, 0.4, 0.02, 0.1, true},
		{"no crossing", 0.5, 0.5, 0.1, 0, false},
		{"leaving goal", 0.96, 0.5, -0.02, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := crossesGoal(tt.x, tt.y, tt.dx, tt.dy); got != tt.want {
				t.Errorf("crossesGoal = %v, want %v", got, tt.want)
			}
		})
	}
}

type recordingDrain struct {
	calls []float32
	err   error
}

func (r *recordingDrain) SourceDrain(x, y, strength float32, color mgl32.Vec3, radius float32) error {
	r.calls = append(r.calls, strength)
	return r.err
}

func TestEmitterSystem(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Position, components.Emitter](w)
	m.NewEntity(&components.Position{X: 0.2, Y: 0.5}, &components.Emitter{Strength: 50, Radius: 100})
	m.NewEntity(&components.Position{X: 0.8, Y: 0.5}, &components.Emitter{Strength: -150, Radius: 100})

	drain := &recordingDrain{}
	n, err := NewEmitterSystem(w, drain).Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 2 {
		t.Errorf("applied %d emitters, want 2", n)
	}
	slices.Sort(drain.calls)
	if !slices.Equal(drain.calls, []float32{-150, 50}) {
		t.Errorf("strengths = %v", drain.calls)
	}

	drain.err = errors.New("gpu lost")
	if _, err := NewEmitterSystem(w, drain).Update(); !errors.Is(err, drain.err) {
		t.Errorf("err = %v, want wrapped drain error", err)
	}
}

func TestColorCycle(t *testing.T) {
	var c ColorCycle
	if c.Advance(0.05, 10) {
		t.Error("wrapped early")
	}
	if !c.Advance(0.06, 10) {
		t.Error("did not wrap past 1")
	}
	if c.timer < 0 || c.timer >= 1 {
		t.Errorf("timer = %v, want in [0, 1)", c.timer)
	}
}

func TestRegistryCoversPhases(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()
	for _, phase := range telemetry.Phases {
		if !slices.Contains(ids, phase) {
			t.Errorf("phase %q not registered", phase)
		}
	}
	if got := reg.GetName(telemetry.PhasePressure); got != "Pressure" {
		t.Errorf("GetName = %q", got)
	}
	if got := reg.GetName("unknown"); got != "unknown" {
		t.Errorf("GetName fallback = %q", got)
	}
	if len(reg.ByCategory("solver")) != 6 {
		t.Errorf("solver passes = %d, want 6", len(reg.ByCategory("solver")))
	}
}
