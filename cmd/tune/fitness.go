package main

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/fluid"
	"github.com/pthm-cable/fluidball/gpu/soft"
)

// Tuning runs use a small view so the software device keeps up.
const (
	tuneSize      = 96
	targetLuma    = 0.25 // mean display brightness aimed for
	minActivity   = 0.05 // mean probed flow speed, normalized units per second
	stirInterval  = 30   // frames between extra splats
	probeInterval = 10   // frames between flow probes
	failedFitness = 1e6
)

// probes are the normalized points where flow speed is sampled.
var probes = []mgl32.Vec2{
	{0.25, 0.25}, {0.5, 0.25}, {0.75, 0.25},
	{0.25, 0.5}, {0.5, 0.5}, {0.75, 0.5},
	{0.25, 0.75}, {0.5, 0.75}, {0.75, 0.75},
}

// FitnessEvaluator runs short fluid sessions on the software device and
// scores how lively the picture stays.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the measurements from a single run.
type runResult struct {
	luma     float64 // mean brightness of the final frame
	activity float64 // mean probed flow speed
	err      error
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Each seed gets its own device and engine, so runs share nothing.
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += computeFitness(r)
		totalQuality += computeQuality(r)
	}
	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// copyConfig returns the base config shrunk to the tuning view.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	f := &cfg.Fluid
	f.SimResolution = min(f.SimResolution, 32)
	f.DyeResolution = min(f.DyeResolution, 64)
	f.CaptureResolution = 64
	f.Bloom.Resolution = min(f.Bloom.Resolution, 32)
	f.Sunrays.Resolution = min(f.Sunrays.Resolution, 32)
	return &cfg
}

// runSimulation stirs the fluid for fe.frames frames and measures it.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runResult {
	dev := soft.New(soft.Options{ScreenWidth: tuneSize, ScreenHeight: tuneSize})
	engine, err := fluid.New(dev, cfg.Fluid,
		fluid.WithLogger(slog.New(slog.DiscardHandler)),
		fluid.WithViewport(tuneSize, tuneSize),
		fluid.WithDitherSeed(seed),
	)
	if err != nil {
		return runResult{err: err}
	}
	defer engine.Close()

	rng := rand.New(rand.NewSource(seed))
	if err := engine.RandomSplats(rng, 10); err != nil {
		return runResult{err: err}
	}

	var speeds []float64
	for i := range fe.frames {
		if i > 0 && i%stirInterval == 0 {
			if err := engine.RandomSplats(rng, 1); err != nil {
				return runResult{err: err}
			}
		}
		if err := engine.Frame(fluid.FrameInput{DT: 1.0 / 60, Width: tuneSize, Height: tuneSize}); err != nil {
			return runResult{err: err}
		}
		if i%probeInterval != 0 {
			continue
		}
		for _, p := range probes {
			dx, dy, err := engine.SampleVelocity(p.X(), p.Y())
			if err != nil {
				return runResult{err: fmt.Errorf("probing flow: %w", err)}
			}
			speeds = append(speeds, float64(mgl32.Vec2{dx, dy}.Len()))
		}
	}

	img, err := engine.Capture()
	if err != nil {
		return runResult{err: err}
	}
	return runResult{
		luma:     meanLuma(img),
		activity: stat.Mean(speeds, nil),
	}
}

// meanLuma is the mean Rec. 709 luma of img in 0..1.
func meanLuma(img *image.RGBA) float64 {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := range b.Dx() {
			px := row[x*4:]
			sum += 0.2126*float64(px[0]) + 0.7152*float64(px[1]) + 0.0722*float64(px[2])
		}
	}
	return sum / float64(n) / 255
}

// computeFitness penalizes distance from the target brightness and flow
// that has gone still.
func computeFitness(r runResult) float64 {
	if r.err != nil {
		return failedFitness
	}
	d := r.luma - targetLuma
	f := 100 * d * d
	if r.activity < minActivity {
		f += 100 * (minActivity - r.activity)
	}
	return f
}

// computeQuality is 1 at the target brightness, falling to 0 at black or
// twice the target.
func computeQuality(r runResult) float64 {
	if r.err != nil {
		return 0
	}
	return max(0, 1-math.Abs(r.luma-targetLuma)/targetLuma)
}
