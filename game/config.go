package game

import (
	"github.com/pthm-cable/fluidball/config"
	"github.com/pthm-cable/fluidball/ui"
)

// drainReloads applies a config delivered by the file watcher, if any.
func (g *Game) drainReloads() {
	if g.reloads == nil {
		return
	}
	select {
	case cfg, ok := <-g.reloads:
		if !ok {
			g.reloads = nil
			return
		}
		g.applyConfig(cfg)
	default:
	}
}

// applyConfig switches to cfg. The engine validates and reallocates first;
// a rejected config leaves everything as it was.
func (g *Game) applyConfig(cfg *config.Config) {
	if err := g.engine.Configure(cfg.Fluid); err != nil {
		g.logger.Warn("config rejected by engine", "error", err)
		g.collector.RecordReload(false)
		return
	}
	g.cfg = cfg
	config.Set(cfg)
	g.drift.SetGoals(cfg.Ball.Goals)
	g.syncEmitters()
	g.collector.RecordReload(true)

	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.logger.Error("failed to write config snapshot", "error", err)
	}
}

// applyFluidEdits hands panel edits of the live config to the engine. A
// rejected edit is rolled back to the values before the panel drew.
func (g *Game) applyFluidEdits() {
	if err := g.engine.Configure(g.cfg.Fluid); err != nil {
		g.logger.Error("panel edit rejected", "error", err)
		g.cfg.Fluid = g.panelBefore
		if err := g.engine.Configure(g.cfg.Fluid); err != nil {
			g.logger.Error("restoring fluid config", "error", err)
		}
	}
}

// applyPanelActions runs the panel buttons pressed during the last Draw.
// They touch GPU state, so they wait until raylib is not drawing.
func (g *Game) applyPanelActions() {
	act := g.pending
	g.pending = ui.PanelActions{}

	if act.Changed {
		g.applyFluidEdits()
	}
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.Reset {
		g.reset()
	}
	if act.RandomSplats {
		g.burst()
	}
	if act.Capture {
		g.capture()
	}
}
