package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, p10, p50, p90 := ComputeStats(values)

	// Mean should be 0.55
	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}

	// P10 should be around 0.19
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}

	// P50 should be around 0.55
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}

	// P90 should be around 0.91
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeStats([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("window = %d ticks, want 4", c.WindowDurationTicks())
	}

	c.RecordSplats(SplatPointer, 2)
	c.RecordSplats(SplatBurst, 20)
	c.RecordSplats(SplatEmitter, 3)
	c.RecordGoal()
	c.RecordReload(true)
	c.RecordReload(false)
	c.RecordCapture()
	c.RecordAbandonedStep()
	c.RecordBallSpeed(0.1)
	c.RecordBallSpeed(0.3)

	if c.ShouldFlush(3) {
		t.Error("flush before window end")
	}
	if !c.ShouldFlush(4) {
		t.Fatal("no flush at window end")
	}

	s := c.Flush(4)
	if s.PointerSplats != 2 || s.BurstSplats != 20 || s.EmitterSplats != 3 {
		t.Errorf("splats = %d/%d/%d", s.PointerSplats, s.BurstSplats, s.EmitterSplats)
	}
	if s.Goals != 1 || s.Reloads != 1 || s.RejectedReloads != 1 || s.Captures != 1 || s.AbandonedSteps != 1 {
		t.Errorf("events = %+v", s)
	}
	if math.Abs(s.BallSpeedMean-0.2) > 1e-9 {
		t.Errorf("ball speed mean = %v, want 0.2", s.BallSpeedMean)
	}
	if s.SimTimeSec != 1.0 {
		t.Errorf("sim time = %v, want 1", s.SimTimeSec)
	}

	next := c.Flush(8)
	if next.WindowStartTick != 4 || next.PointerSplats != 0 || next.BallSpeedMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
