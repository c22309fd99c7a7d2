// Package game hosts the fluid engine: the raylib window, pointer and key
// input, the tunables panel, the ball and emitters, screenshots and
// telemetry.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidball/components"
	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/fluid"
	"github.com/pthm-cable/fluidball/gpu"
	"github.com/pthm-cable/fluidball/gpu/gldevice"
	"github.com/pthm-cable/fluidball/gpu/soft"
	"github.com/pthm-cable/fluidball/renderer"
	"github.com/pthm-cable/fluidball/systems"
	"github.com/pthm-cable/fluidball/telemetry"
	"github.com/pthm-cable/fluidball/ui"
)

// DT is the fixed headless step and the cap on a windowed frame's dt.
const DT = 1.0 / 60.0

// goalBurst is the number of random splats a goal sets off.
const goalBurst = 20

// Options configures a game instance.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	ConfigPath     string // watched for changes when set
	Headless       bool
}

// Game holds the complete host state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	// Fluid
	dev    gpu.Device
	glDev  *gldevice.Device // nil when headless
	engine *fluid.Engine
	screen *renderer.Screen

	// Entities riding the flow
	world       *ecs.World
	ballMapper  *ecs.Map3[components.Position, components.Velocity, components.Ball]
	emitMapper  *ecs.Map2[components.Position, components.Emitter]
	emitFilter  *ecs.Filter2[components.Position, components.Emitter]
	ballFilter  *ecs.Filter3[components.Position, components.Velocity, components.Ball]
	emitterEnts []ecs.Entity
	drift       *systems.DriftSystem
	emitters    *systems.EmitterSystem

	rng     *rand.Rand
	colors  systems.ColorCycle
	pointer systems.Pointer

	// State
	tick        int32
	paused      bool
	goals       int
	headless    bool
	pending     ui.PanelActions // panel buttons, applied at the next Update
	panelBefore config.FluidConfig
	status      string
	statusT     float32

	renderFailed bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool

	// Hot reload
	reloads     <-chan *config.Config
	stopWatcher context.CancelFunc

	// UI
	systemRegistry *systems.SystemRegistry
	uiOverlays     *ui.OverlayRegistry
	uiHUD          *ui.HUD
	uiPerf         *ui.PerfPanel
	uiPanel        *ui.TunablesPanel
	uiLegend       *ui.OverlayLegend
}

// NewGameWithOptions creates the game. In windowed mode the raylib window
// must already be open; headless mode runs on the software device.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()
	logger := slog.Default()

	g := &Game{
		cfg:            cfg,
		logger:         logger,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		headless:       opts.Headless,
		logStats:       opts.LogStats,
		collector:      telemetry.NewCollector(opts.StatsWindowSec, DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		systemRegistry: systems.NewSystemRegistry(),
		uiOverlays:     ui.NewOverlayRegistry(),
	}

	w, h := cfg.Screen.Width, cfg.Screen.Height
	if opts.Headless {
		g.dev = soft.New(soft.Options{ScreenWidth: w, ScreenHeight: h})
	} else {
		glDev, err := gldevice.New()
		if err != nil {
			return nil, err
		}
		g.dev, g.glDev = glDev, glDev
		w, h = int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	}
	g.screen = renderer.NewScreen(g.dev, w, h)

	engine, err := fluid.New(g.dev, cfg.Fluid,
		fluid.WithLogger(logger),
		fluid.WithPhaseTimer(g.perfCollector),
		fluid.WithViewport(w, h),
		fluid.WithDitherSeed(opts.Seed),
	)
	if err != nil {
		g.closeDevice()
		return nil, fmt.Errorf("creating fluid engine: %w", err)
	}
	g.engine = engine

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Unload()
		return nil, err
	}
	g.outputManager = output
	if err := output.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config snapshot", "error", err)
	}

	if opts.ConfigPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		reloads, err := config.Watch(ctx, opts.ConfigPath, logger)
		if err != nil {
			cancel()
			logger.Warn("config hot reload disabled", "error", err)
		} else {
			g.reloads, g.stopWatcher = reloads, cancel
		}
	}

	g.initEntities()
	g.initUI()

	g.pointer.Color = fluid.RandomColor(g.rng)
	g.burst()
	return g, nil
}

// initEntities builds the ECS world with the ball and the emitters.
func (g *Game) initEntities() {
	g.world = ecs.NewWorld()
	g.ballMapper = ecs.NewMap3[components.Position, components.Velocity, components.Ball](g.world)
	g.emitMapper = ecs.NewMap2[components.Position, components.Emitter](g.world)
	g.ballFilter = ecs.NewFilter3[components.Position, components.Velocity, components.Ball](g.world)
	g.emitFilter = ecs.NewFilter2[components.Position, components.Emitter](g.world)
	g.drift = systems.NewDriftSystem(g.world, g.engine, g.cfg.Ball.Goals)
	g.emitters = systems.NewEmitterSystem(g.world, g.engine)

	if g.cfg.Ball.Enabled {
		pos := components.Position{X: float32(g.cfg.Ball.X), Y: float32(g.cfg.Ball.Y)}
		vel := components.Velocity{}
		ball := components.Ball{Radius: float32(g.cfg.Ball.Radius)}
		g.ballMapper.NewEntity(&pos, &vel, &ball)
	}
	g.syncEmitters()
}

// syncEmitters replaces the emitter entities with the configured list.
func (g *Game) syncEmitters() {
	for _, e := range g.emitterEnts {
		g.emitMapper.Remove(e)
	}
	g.emitterEnts = g.emitterEnts[:0]

	for _, ec := range g.cfg.Emitters {
		pos := components.Position{X: float32(ec.X), Y: float32(ec.Y)}
		em := components.Emitter{
			Strength: float32(ec.Strength),
			Hue:      ec.Hue,
			Radius:   float32(ec.Radius),
		}
		g.emitterEnts = append(g.emitterEnts, g.emitMapper.NewEntity(&pos, &em))
	}
}

// initUI creates the panels. Headless runs skip it.
func (g *Game) initUI() {
	if g.headless {
		return
	}
	g.uiHUD = ui.NewHUD()
	g.uiPanel = ui.NewTunablesPanel(10, 10, 240)
	g.uiPerf = ui.NewPerfPanel(int32(g.screen.Width)-270, 120)
	g.uiLegend = ui.NewOverlayLegend(int32(g.screen.Width)-270, int32(g.screen.Height)-150, 260)
}

// Update runs one windowed frame: input, emitters, the fluid step and the
// ball. Draw must follow.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.perfCollector.StartTick()

	g.drainReloads()
	g.handleInput()
	g.applyPanelActions()

	dt := min(rl.GetFrameTime(), DT)
	g.step(dt)

	if g.statusT > 0 {
		g.statusT -= dt
	}
}

// UpdateHeadless runs one fixed-dt frame on the software device without
// rendering.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.drainReloads()
	g.step(DT)
	g.endFrame()
}

// step advances everything but rendering by dt seconds.
func (g *Game) step(dt float32) {
	if g.cfg.Input.Colorful && g.colors.Advance(float64(dt), g.cfg.Input.ColorUpdateSpeed) {
		g.pointer.Color = fluid.RandomColor(g.rng)
	}

	if !g.paused {
		n, err := g.emitters.Update()
		if err != nil {
			g.logger.Error("emitters failed", "error", err)
		}
		g.collector.RecordSplats(telemetry.SplatEmitter, n)
	}

	abandoned := g.engine.AbandonedSteps()
	err := g.engine.Frame(fluid.FrameInput{
		DT:     dt,
		Width:  g.screen.Width,
		Height: g.screen.Height,
		Paused: g.paused,
	})
	if err != nil {
		g.logger.Error("fluid frame failed", "tick", g.tick, "error", err)
	}
	for range g.engine.AbandonedSteps() - abandoned {
		g.collector.RecordAbandonedStep()
	}

	if !g.paused {
		g.updateBall(dt)
	}
}

// updateBall drifts the ball, handles goals and moves the sunrays focus.
func (g *Game) updateBall(dt float32) {
	scored, err := g.drift.Update(dt)
	if err != nil {
		g.logger.Error("ball drift failed", "error", err)
		return
	}
	for range scored {
		g.goals++
		g.collector.RecordGoal()
		g.logger.Info("goal", "tick", g.tick, "total", g.goals)
		if err := g.engine.RandomSplats(g.rng, goalBurst); err != nil {
			g.logger.Error("goal splats failed", "error", err)
		}
		g.collector.RecordSplats(telemetry.SplatBurst, goalBurst)
	}

	query := g.ballFilter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		g.collector.RecordBallSpeed(float64(mgl32.Vec2{vel.X, vel.Y}.Len()))
		if g.cfg.Ball.Focus {
			g.engine.SetFocus(pos.X, pos.Y)
		}
	}
}

// endFrame closes the perf sample and flushes telemetry.
func (g *Game) endFrame() {
	g.perfCollector.EndTick()
	g.tick++
	g.flushTelemetry()
}

// burst adds a random number of random splats in the configured range.
func (g *Game) burst() {
	n := g.cfg.Input.BurstMin
	if span := g.cfg.Input.BurstMax - g.cfg.Input.BurstMin; span > 0 {
		n += g.rng.Intn(span)
	}
	if err := g.engine.RandomSplats(g.rng, n); err != nil {
		g.logger.Error("random splats failed", "error", err)
		return
	}
	g.collector.RecordSplats(telemetry.SplatBurst, n)
}

// reset clears the fluid and returns the ball to its start.
func (g *Game) reset() {
	g.engine.Reset()
	g.drift.Reset(float32(g.cfg.Ball.X), float32(g.cfg.Ball.Y))
	g.goals = 0
	g.logger.Info("reset", "tick", g.tick)
}

// setStatus shows msg in the HUD for a few seconds.
func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusT = 4
}

// Unload releases the engine, the device and every output file.
func (g *Game) Unload() {
	if g.stopWatcher != nil {
		g.stopWatcher()
	}
	if g.engine != nil {
		g.engine.Close()
	}
	g.closeDevice()
	if err := g.outputManager.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}

func (g *Game) closeDevice() {
	if g.glDev != nil {
		g.glDev.Close()
	}
}

// Tick returns the number of completed frames.
func (g *Game) Tick() int32 {
	return g.tick
}

// Goals returns the number of goals scored since the last reset.
func (g *Game) Goals() int {
	return g.goals
}
