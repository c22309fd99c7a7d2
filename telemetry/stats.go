package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Splats applied during the window
	PointerSplats int `csv:"pointer_splats"`
	BurstSplats   int `csv:"burst_splats"`
	EmitterSplats int `csv:"emitter_splats"`

	// Events during window
	Goals           int `csv:"goals"`
	Reloads         int `csv:"reloads"`
	RejectedReloads int `csv:"rejected_reloads"`
	Captures        int `csv:"captures"`
	AbandonedSteps  int `csv:"abandoned_steps"`

	// Ball speed distribution (normalized units per second)
	BallSpeedMean float64 `csv:"ball_speed_mean"`
	BallSpeedP10  float64 `csv:"ball_speed_p10"`
	BallSpeedP50  float64 `csv:"ball_speed_p50"`
	BallSpeedP90  float64 `csv:"ball_speed_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats calculates mean and percentiles of values.
func ComputeStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("pointer_splats", s.PointerSplats),
		slog.Int("burst_splats", s.BurstSplats),
		slog.Int("emitter_splats", s.EmitterSplats),
		slog.Int("goals", s.Goals),
		slog.Int("reloads", s.Reloads),
		slog.Int("rejected_reloads", s.RejectedReloads),
		slog.Int("captures", s.Captures),
		slog.Int("abandoned_steps", s.AbandonedSteps),
		slog.Float64("ball_speed_mean", s.BallSpeedMean),
		slog.Float64("ball_speed_p10", s.BallSpeedP10),
		slog.Float64("ball_speed_p50", s.BallSpeedP50),
		slog.Float64("ball_speed_p90", s.BallSpeedP90),
	)
}

// LogStats logs the window stats using logger, or the default logger.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats", "window", s)
}
