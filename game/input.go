package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidball/fluid"
	"github.com/pthm-cable/fluidball/telemetry"
	"github.com/pthm-cable/fluidball/ui"
)

// handleInput processes keyboard and pointer input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyP) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.burst()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.capture()
	}

	g.handleOverlayKeys()
	g.handlePointer()
}

// handleOverlayKeys toggles overlays bound to the keys pressed this frame.
func (g *Game) handleOverlayKeys() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := g.uiOverlays.HandleKeyPress(key); ok {
			g.logger.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
// The engine reshapes its fields at the start of the next frame.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	if w == g.screen.Width && h == g.screen.Height {
		return
	}
	g.screen.SetSize(w, h)
	g.uiPerf.SetPosition(int32(w)-270, 120)
	g.uiLegend.SetPosition(int32(w)-270, int32(h)-150)
}

// handlePointer turns a left-button drag into queued splats. Presses on the
// tunables panel belong to the panel.
func (g *Game) handlePointer() {
	m := rl.GetMousePosition()
	w, h := float32(g.screen.Width), float32(g.screen.Height)
	// Screen rows run top down; the fluid's y runs bottom up.
	x, y := m.X/w, 1-m.Y/h

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if g.uiOverlays.IsEnabled(ui.OverlayPanel) && g.uiPanel.Contains(m.X, m.Y) {
			return
		}
		g.pointer.Press(x, y, fluid.RandomColor(g.rng))
	}
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.pointer.Release()
		return
	}

	g.pointer.Move(x, y, w/h)
	if req, ok := g.pointer.Splat(float32(g.cfg.Input.SplatForce)); ok {
		g.engine.QueueSplat(req)
		g.collector.RecordSplats(telemetry.SplatPointer, 1)
	}
}
