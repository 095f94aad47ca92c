package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Tick     int32
	SimTime  time.Duration
	Speed    int
	FPS      int32
	Paused   bool
	Live     int
	Free     int
	Max      int
	Shapes   int
	Bodies   int
	Boundary string
	Emitting bool
	Placing  bool
	Selected string
	Engine   string
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	visible  bool
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), visible: true}
}

// Toggle switches HUD visibility.
func (h *HUD) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// Draw renders the HUD panel in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	if !h.visible {
		return
	}
	r := h.renderer
	pad := r.Theme.Padding
	x, y := pad, pad
	width := int32(220)

	r.DrawPanel(x, y, width, 9*r.Theme.LineHeight+2*pad+4)
	x += pad
	y += pad

	y = r.DrawSectionHeader(x, y, "fluidbox")
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d (%.1fs)", data.Tick, data.SimTime.Seconds()))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%dx | %d FPS", data.Speed, data.FPS))
	y = r.DrawLabelValue(x, y, "Engine", fmt.Sprintf("%s, %d bodies", data.Engine, data.Bodies))
	y = r.DrawLabelValue(x, y, "Water", fmt.Sprintf("%d/%d live, %d free", data.Live, data.Max, data.Free))
	y = r.DrawLabelValue(x, y, "Shapes", fmt.Sprintf("%d", data.Shapes))
	y = r.DrawLabelValue(x, y, "Boundary", data.Boundary)

	mode := "hold to spawn"
	if data.Placing {
		mode = "click to place " + data.Selected
	}
	y = r.DrawLabelValue(x, y, "Mode", mode)

	status, color := "Running", rl.Green
	if data.Paused {
		status, color = "PAUSED", rl.Yellow
	}
	if data.Emitting {
		status += ", emitting"
	}
	rl.DrawText(status, x, y, r.Theme.FontSize, color)
}

// DrawControls renders the key legend above the toolbar.
func (h *HUD) DrawControls(y int32, controls string) {
	rl.DrawText(controls, 10, y-18, 12, rl.Gray)
}
