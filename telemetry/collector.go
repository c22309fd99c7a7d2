package telemetry

// SplatSource says where a splat came from.
type SplatSource uint8

const (
	SplatPointer SplatSource = iota
	SplatBurst
	SplatEmitter
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	pointerSplats    int
	burstSplats      int
	emitterSplats    int
	goals            int
	reloads          int
	rejectedReloads  int
	captures         int
	abandonedSteps   int
	ballSpeedSamples []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSplats records n splats from source.
func (c *Collector) RecordSplats(source SplatSource, n int) {
	switch source {
	case SplatPointer:
		c.pointerSplats += n
	case SplatBurst:
		c.burstSplats += n
	case SplatEmitter:
		c.emitterSplats += n
	}
}

// RecordGoal records a ball entering a goal.
func (c *Collector) RecordGoal() {
	c.goals++
}

// RecordReload records a config reload; applied is false when Configure
// rejected it.
func (c *Collector) RecordReload(applied bool) {
	if applied {
		c.reloads++
	} else {
		c.rejectedReloads++
	}
}

// RecordCapture records a saved screenshot.
func (c *Collector) RecordCapture() {
	c.captures++
}

// RecordAbandonedStep records a step dropped after a shader failure.
func (c *Collector) RecordAbandonedStep() {
	c.abandonedSteps++
}

// RecordBallSpeed samples the ball's speed in normalized units per second.
func (c *Collector) RecordBallSpeed(speed float64) {
	c.ballSpeedSamples = append(c.ballSpeedSamples, speed)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32) WindowStats {
	mean, p10, p50, p90 := ComputeStats(c.ballSpeedSamples)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		PointerSplats: c.pointerSplats,
		BurstSplats:   c.burstSplats,
		EmitterSplats: c.emitterSplats,

		Goals:           c.goals,
		Reloads:         c.reloads,
		RejectedReloads: c.rejectedReloads,
		Captures:        c.captures,
		AbandonedSteps:  c.abandonedSteps,

		BallSpeedMean: mean,
		BallSpeedP10:  p10,
		BallSpeedP50:  p50,
		BallSpeedP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.pointerSplats = 0
	c.burstSplats = 0
	c.emitterSplats = 0
	c.goals = 0
	c.reloads = 0
	c.rejectedReloads = 0
	c.captures = 0
	c.abandonedSteps = 0
	c.ballSpeedSamples = c.ballSpeedSamples[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
