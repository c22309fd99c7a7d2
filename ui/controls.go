package ui

import (
	"fmt"
	"slices"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidball/config"
)

// Resolution choices cycled by the quality and sim buttons.
var (
	dyeResolutions = []int{1024, 512, 256, 128}
	dyeLabels      = []string{"high", "medium", "low", "very low"}
	simResolutions = []int{32, 64, 128, 256}
)

// PanelActions are the one-shot buttons pressed this frame.
type PanelActions struct {
	Changed      bool // cfg was edited
	TogglePause  bool
	Reset        bool
	RandomSplats bool
	Capture      bool
}

// panelHeight is the fixed height of the tunables panel.
const panelHeight = 560

// TunablesPanel renders the raygui panel that edits the live config.
type TunablesPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
}

// NewTunablesPanel creates a panel at (x, y).
func NewTunablesPanel(x, y, width float32) *TunablesPanel {
	return &TunablesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Contains reports whether the screen point (x, y) falls on the panel.
func (p *TunablesPanel) Contains(x, y float32) bool {
	return x >= p.x && x < p.x+p.width && y >= p.y && y < p.y+panelHeight
}

// Draw renders the panel and applies slider edits to cfg.
func (p *TunablesPanel) Draw(cfg *config.Config, paused bool) PanelActions {
	var act PanelActions
	r := p.renderer
	th := r.Theme
	pad := float32(th.Padding)

	r.DrawPanel(int32(p.x), int32(p.y), int32(p.width), panelHeight)
	x := p.x + pad
	y := p.y + pad
	inner := p.width - 2*pad

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Fluid"))
	f := &cfg.Fluid

	i := slices.Index(dyeResolutions, f.DyeResolution)
	label := fmt.Sprintf("quality: %d", f.DyeResolution)
	if i >= 0 {
		label = "quality: " + dyeLabels[i]
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner/2 - 4, Height: th.ButtonHeight}, label) {
		f.DyeResolution = dyeResolutions[(i+1)%len(dyeResolutions)]
		act.Changed = true
	}
	if gui.Button(rl.Rectangle{X: x + inner/2 + 4, Y: y, Width: inner/2 - 4, Height: th.ButtonHeight}, fmt.Sprintf("sim: %d", f.SimResolution)) {
		j := slices.Index(simResolutions, f.SimResolution)
		f.SimResolution = simResolutions[(j+1)%len(simResolutions)]
		act.Changed = true
	}
	y += th.ButtonHeight + 8

	y = p.slider(&act, x, y, "density diffusion", &f.DensityDissipation, 0, 4)
	y = p.slider(&act, x, y, "velocity diffusion", &f.VelocityDissipation, 0, 4)
	y = p.slider(&act, x, y, "pressure", &f.Pressure, 0, 1)
	y = p.slider(&act, x, y, "vorticity", &f.Curl, 0, 50)
	y = p.slider(&act, x, y, "splat radius", &f.SplatRadius, 0.01, 1)

	half := inner/2 - 4
	p.toggle(&act, x, y, half, "shading", &f.Shading)
	p.toggle(&act, x+half+8, y, half, "colorful", &cfg.Input.Colorful)
	y += th.ButtonHeight + 4
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner, Height: th.ButtonHeight}, toggleText(paused, "resume", "pause")) {
		act.TogglePause = true
	}
	y += th.ButtonHeight + 8

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Bloom"))
	p.toggle(&act, x, y, inner, "bloom", &f.Bloom.Enabled)
	y += th.ButtonHeight + 4
	y = p.slider(&act, x, y, "intensity", &f.Bloom.Intensity, 0.1, 2)
	y = p.slider(&act, x, y, "threshold", &f.Bloom.Threshold, 0, 1)

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Sunrays"))
	p.toggle(&act, x, y, inner, "sunrays", &f.Sunrays.Enabled)
	y += th.ButtonHeight + 4
	y = p.slider(&act, x, y, "weight", &f.Sunrays.Weight, 0.3, 1)

	y += 4
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: th.ButtonHeight}, "random splats") {
		act.RandomSplats = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: y, Width: half, Height: th.ButtonHeight}, "reset") {
		act.Reset = true
	}
	y += th.ButtonHeight + 4
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner, Height: th.ButtonHeight}, "take screenshot") {
		act.Capture = true
	}
	return act
}

// slider draws a labelled slider for a float64 field and returns the next y.
func (p *TunablesPanel) slider(act *PanelActions, x, y float32, label string, v *float64, lo, hi float32) float32 {
	th := p.renderer.Theme
	inner := p.width - 2*float32(th.Padding)
	rl.DrawText(label, int32(x), int32(y), th.FontSize, th.LabelColor)
	y += float32(th.LineHeight) - 2

	cur := float32(*v)
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: inner - 50, Height: th.SliderHeight},
		"", "",
		cur, lo, hi,
	)
	rl.DrawText(fmt.Sprintf("%.2f", next), int32(x+inner-44), int32(y+2), th.FontSize, th.ValueColor)
	if next != cur {
		*v = float64(next)
		act.Changed = true
	}
	return y + th.SliderHeight + 6
}

// toggle draws a button that flips a bool field.
func (p *TunablesPanel) toggle(act *PanelActions, x, y, width float32, label string, v *bool) {
	text := toggleText(*v, label+" on", label+" off")
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: width, Height: p.renderer.Theme.ButtonHeight}, text) {
		*v = !*v
		act.Changed = true
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// OverlayLegend lists the overlay toggles and their keys.
type OverlayLegend struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewOverlayLegend creates a legend at (x, y).
func NewOverlayLegend(x, y, width int32) *OverlayLegend {
	return &OverlayLegend{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the legend position.
func (l *OverlayLegend) SetPosition(x, y int32) {
	l.x = x
	l.y = y
}

// Draw renders one line per overlay with a status indicator.
func (l *OverlayLegend) Draw(overlays *OverlayRegistry) {
	r := l.renderer
	lineHeight := r.Theme.LineHeight
	all := overlays.All()
	r.DrawPanel(l.x, l.y, l.width, int32(len(all))*lineHeight+r.Theme.Padding*2)

	y := l.y + r.Theme.Padding
	x := l.x + r.Theme.Padding
	width := l.width - r.Theme.Padding*2
	for _, desc := range all {
		enabled := overlays.IsEnabled(desc.ID)
		statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
		nameColor := r.Theme.LabelColor
		if enabled {
			statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
			nameColor = rl.White
		}
		rl.DrawRectangle(x, y+2, 8, 8, statusColor)
		rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

		if desc.KeyLabel != "" {
			keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
			keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
			rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
		}
		y += lineHeight
	}
}
