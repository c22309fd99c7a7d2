package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidball/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	FPS       int32
	Paused    bool
	SimSize   [2]int
	DyeSize   [2]int
	Format    string
	Filtering bool
	Goals     int
	Status    string // transient message, e.g. a capture path
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD at the top right of a screen of the given width.
func (h *HUD) Draw(data HUDData, screenWidth int32) {
	const width = 260
	x := screenWidth - width - 10

	rl.DrawText(data.Title, x, 10, 20, rl.White)

	filtering := "linear"
	if !data.Filtering {
		filtering = "manual"
	}
	rl.DrawText(
		fmt.Sprintf("Sim: %dx%d | Dye: %dx%d", data.SimSize[0], data.SimSize[1], data.DyeSize[0], data.DyeSize[1]),
		x, 35, 14, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("FPS: %d | %s | %s", data.FPS, data.Format, filtering),
		x, 53, 14, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Goals > 0 {
		statusText += fmt.Sprintf(" | Goals: %d", data.Goals)
	}
	rl.DrawText(statusText, x, 71, 14, rl.Yellow)

	if data.Status != "" {
		rl.DrawText(data.Status, x, 89, 12, rl.Gray)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes  map[string]time.Duration
	Total       time.Duration
	FrameMeanMS float64
	FrameP95MS  float64
	Registry    *systems.SystemRegistry
}

// PerfPanel renders the per-pass performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, passes in registry order.
func (p *PerfPanel) Draw(data PerfPanelData) {
	const width = 260
	r := p.renderer
	x := p.x
	y := p.y

	r.DrawPanel(x-6, y-6, width, 240)

	rl.DrawText("Pass Timings", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("Frame: %.2f ms mean, %.2f ms p95", data.FrameMeanMS, data.FrameP95MS), x, y, 12, rl.LightGray)
	y += 14
	// Share of a 60 Hz frame budget.
	y = r.DrawBar(x, y, "Budget", float32(data.FrameMeanMS/(1000.0/60)), width-12)

	if data.Registry == nil {
		return
	}
	for _, info := range data.Registry.All() {
		avg, ok := data.PhaseTimes[info.ID]
		if !ok {
			continue
		}
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 20 {
			color = rl.Red
		} else if pct > 10 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", info.Name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
