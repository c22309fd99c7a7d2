package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fluidball/systems"
	"github.com/pthm-cable/fluidball/ui"
)

const controlsText = "Drag: splat | Space: burst | P: pause | R: reset | C: screenshot | Tab: panel | F3: perf"

// Draw renders the fluid to the back buffer, then the overlays and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()

	// The fluid goes first, before raylib has batched anything.
	g.engine.Context().Invalidate()
	if err := g.engine.Render(g.screen); err != nil {
		if !g.renderFailed {
			g.logger.Error("fluid render failed", "tick", g.tick, "error", err)
		}
		g.renderFailed = true
		rl.ClearBackground(rl.Black)
	} else {
		g.renderFailed = false
	}
	g.glDev.Restore(g.screen.Width, g.screen.Height)
	g.endFrame()

	g.drawOverlays()
	g.drawUI()

	rl.EndDrawing()
}

// toScreen maps a normalized fluid position to screen pixels.
func (g *Game) toScreen(x, y float32) rl.Vector2 {
	return rl.Vector2{
		X: x * float32(g.screen.Width),
		Y: (1 - y) * float32(g.screen.Height),
	}
}

// drawOverlays renders the scene overlays that are switched on.
func (g *Game) drawOverlays() {
	if g.uiOverlays.IsEnabled(ui.OverlayBall) {
		g.drawGoals()
		g.drawBall()
	}
	if g.uiOverlays.IsEnabled(ui.OverlayEmitters) {
		g.drawEmitters()
	}
}

// drawBall draws every ball as a white disc with an outline.
func (g *Game) drawBall() {
	h := float32(g.screen.Height)
	query := g.ballFilter.Query()
	for query.Next() {
		pos, _, ball := query.Get()
		c := g.toScreen(pos.X, pos.Y)
		r := ball.Radius * h
		rl.DrawCircleV(c, r, rl.Color{R: 240, G: 240, B: 240, A: 230})
		rl.DrawCircleLinesV(c, r, rl.DarkGray)
	}
}

// drawGoals outlines the goal boxes when goals are on.
func (g *Game) drawGoals() {
	if !g.cfg.Ball.Goals {
		return
	}
	left, right := systems.GoalBoxes()
	for _, b := range []systems.Bounds{left, right} {
		tl := g.toScreen(b.MinX, b.MaxY)
		br := g.toScreen(b.MaxX, b.MinY)
		rl.DrawRectangleLinesEx(rl.Rectangle{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}, 2, rl.White)
	}
}

// drawEmitters marks sources in their dye hue and drains in grey.
func (g *Game) drawEmitters() {
	query := g.emitFilter.Query()
	for query.Next() {
		pos, em := query.Get()
		c := g.toScreen(pos.X, pos.Y)
		col := rl.Gray
		if em.IsSource() {
			hc := colorful.Hsv(em.Hue, 0.8, 1)
			r, gr, b := hc.RGB255()
			col = rl.Color{R: r, G: gr, B: b, A: 255}
		}
		rl.DrawCircleLinesV(c, 12, col)
		rl.DrawLineV(rl.Vector2{X: c.X - 6, Y: c.Y}, rl.Vector2{X: c.X + 6, Y: c.Y}, col)
		if em.IsSource() {
			rl.DrawLineV(rl.Vector2{X: c.X, Y: c.Y - 6}, rl.Vector2{X: c.X, Y: c.Y + 6}, col)
		}
	}
}

// drawUI renders the HUD and panels. Panel buttons are queued for the next
// Update.
func (g *Game) drawUI() {
	w, h := int32(g.screen.Width), int32(g.screen.Height)

	if g.uiOverlays.IsEnabled(ui.OverlayPanel) {
		g.panelBefore = g.cfg.Fluid
		act := g.uiPanel.Draw(g.cfg, g.paused)
		g.pending = mergeActions(g.pending, act)
	}

	if g.uiOverlays.IsEnabled(ui.OverlayHUD) {
		sim, dye := g.engine.FieldSizes()
		caps := g.engine.Capabilities()
		status := ""
		if g.statusT > 0 {
			status = g.status
		}
		g.uiHUD.Draw(ui.HUDData{
			Title:     "Fluid",
			FPS:       int32(rl.GetFPS()),
			Paused:    g.paused,
			SimSize:   sim,
			DyeSize:   dye,
			Format:    caps.RGBA.String(),
			Filtering: caps.LinearFiltering,
			Goals:     g.goals,
			Status:    status,
		}, w)
		g.uiHUD.DrawControls(h, controlsText)
	}

	if g.uiOverlays.IsEnabled(ui.OverlayPerf) {
		stats := g.perfCollector.Stats()
		g.uiPerf.Draw(ui.PerfPanelData{
			PhaseTimes:  stats.PhaseAvg,
			Total:       stats.AvgTickDuration,
			FrameMeanMS: stats.FrameMeanMS,
			FrameP95MS:  stats.FrameP95MS,
			Registry:    g.systemRegistry,
		})
		g.uiLegend.Draw(g.uiOverlays)
	}

	if g.paused {
		text := "PAUSED"
		rl.DrawText(text, w/2-rl.MeasureText(text, 30)/2, 20, 30, rl.Yellow)
	}
}

func mergeActions(a, b ui.PanelActions) ui.PanelActions {
	return ui.PanelActions{
		Changed:      a.Changed || b.Changed,
		TogglePause:  a.TogglePause != b.TogglePause,
		Reset:        a.Reset || b.Reset,
		RandomSplats: a.RandomSplats || b.RandomSplats,
		Capture:      a.Capture || b.Capture,
	}
}

// capture saves a screenshot at the capture resolution.
func (g *Game) capture() {
	img, err := g.engine.Capture()
	if err != nil {
		g.logger.Error("capture failed", "error", err)
		g.setStatus("Screenshot failed")
		return
	}
	name := fmt.Sprintf("fluid-%06d.png", g.tick)
	path, err := g.outputManager.WriteCapture(name, img)
	if err != nil {
		g.logger.Error("failed to save screenshot", "error", err)
		g.setStatus("Screenshot failed")
		return
	}
	g.collector.RecordCapture()
	g.logger.Info("screenshot saved", "path", path)
	g.setStatus("Saved " + path)
}
