package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the fluid frame, in execution order.
const (
	PhaseSplat      = "splat"
	PhaseCurl       = "curl"
	PhaseVorticity  = "vorticity"
	PhaseDivergence = "divergence"
	PhasePressure   = "pressure"
	PhaseGradient   = "gradient"
	PhaseAdvection  = "advection"
	PhaseBloom      = "bloom"
	PhaseSunrays    = "sunrays"
	PhaseDisplay    = "display"
	PhaseReadback   = "readback"
)

// Phases lists every phase in execution order.
var Phases = []string{
	PhaseSplat, PhaseCurl, PhaseVorticity, PhaseDivergence, PhasePressure,
	PhaseGradient, PhaseAdvection, PhaseBloom, PhaseSunrays, PhaseDisplay,
	PhaseReadback,
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
// CPU-side phase times measure command submission; GL drivers queue work,
// so the GPU cost of a pass may land in a later phase.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
	frames        []float64 // frame durations in ms, ring of windowSize
	frameIndex    int
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		frames:        make([]float64, 0, windowSize),
	}
}

// StartTick begins timing a new frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current frame and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records wall time between presented frames.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.recordFrameDuration(now.Sub(p.lastFrameTime))
	}
	p.lastFrameTime = now
}

func (p *PerfCollector) recordFrameDuration(d time.Duration) {
	p.frameDuration = d
	ms := float64(d) / float64(time.Millisecond)
	if len(p.frames) < p.windowSize {
		p.frames = append(p.frames, ms)
		return
	}
	p.frames[p.frameIndex] = ms
	p.frameIndex = (p.frameIndex + 1) % p.windowSize
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
	FrameMeanMS   float64
	FrameStdDevMS float64
	FrameP95MS    float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if len(p.frames) > 0 {
		sorted := slices.Clone(p.frames)
		slices.Sort(sorted)
		s.FrameMeanMS, s.FrameStdDevMS = stat.MeanStdDev(sorted, nil)
		if len(sorted) < 2 {
			s.FrameStdDevMS = 0
		}
		s.FrameP95MS = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	if p.sampleCount == 0 {
		return s
	}

	var totalTick time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		sample := p.samples[i]
		totalTick += sample.TickDuration

		if i == 0 || sample.TickDuration < s.MinTickDuration {
			s.MinTickDuration = sample.TickDuration
		}
		if sample.TickDuration > s.MaxTickDuration {
			s.MaxTickDuration = sample.TickDuration
		}
		for phase, dur := range sample.Phases {
			phaseSum[phase] += dur
		}
	}

	s.AvgTickDuration = totalTick / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		s.PhaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if s.AvgTickDuration > 0 {
			s.PhasePct[phase] = float64(s.PhaseAvg[phase]) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs,
			"fps", int(s.FPS),
			"frame_p95_ms", int(s.FrameP95MS*10)/10.0,
			"frame_std_ms", int(s.FrameStdDevMS*10)/10.0,
		)
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	logger.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs,
			slog.Float64("fps", s.FPS),
			slog.Float64("frame_mean_ms", s.FrameMeanMS),
			slog.Float64("frame_p95_ms", s.FrameP95MS),
		)
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	FrameMeanMS   float64 `csv:"frame_mean_ms"`
	FrameStdDevMS float64 `csv:"frame_std_ms"`
	FrameP95MS    float64 `csv:"frame_p95_ms"`
	SplatPct      float64 `csv:"splat_pct"`
	CurlPct       float64 `csv:"curl_pct"`
	VorticityPct  float64 `csv:"vorticity_pct"`
	DivergencePct float64 `csv:"divergence_pct"`
	PressurePct   float64 `csv:"pressure_pct"`
	GradientPct   float64 `csv:"gradient_pct"`
	AdvectionPct  float64 `csv:"advection_pct"`
	BloomPct      float64 `csv:"bloom_pct"`
	SunraysPct    float64 `csv:"sunrays_pct"`
	DisplayPct    float64 `csv:"display_pct"`
	ReadbackPct   float64 `csv:"readback_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		FrameMeanMS:   s.FrameMeanMS,
		FrameStdDevMS: s.FrameStdDevMS,
		FrameP95MS:    s.FrameP95MS,
		SplatPct:      s.PhasePct[PhaseSplat],
		CurlPct:       s.PhasePct[PhaseCurl],
		VorticityPct:  s.PhasePct[PhaseVorticity],
		DivergencePct: s.PhasePct[PhaseDivergence],
		PressurePct:   s.PhasePct[PhasePressure],
		GradientPct:   s.PhasePct[PhaseGradient],
		AdvectionPct:  s.PhasePct[PhaseAdvection],
		BloomPct:      s.PhasePct[PhaseBloom],
		SunraysPct:    s.PhasePct[PhaseSunrays],
		DisplayPct:    s.PhasePct[PhaseDisplay],
		ReadbackPct:   s.PhasePct[PhaseReadback],
	}
}
