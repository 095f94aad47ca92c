package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidbox/systems"
	"github.com/pthm-cable/fluidbox/ui"
)

// keyEvents maps single key presses to Trigger events.
var keyEvents = map[int32]string{
	rl.KeyW:     EventEmissionToggle,
	rl.KeyB:     EventToggleBordered,
	rl.KeyL:     EventToggleLocked,
	rl.KeyO:     EventBoundaryOpen,
	rl.KeyP:     EventTogglePlacing,
	rl.KeyC:     EventShapesClear,
	rl.KeyOne:   EventShapeSelectPrefix + string(systems.ShapeCircle),
	rl.KeyTwo:   EventShapeSelectPrefix + string(systems.ShapeSquare),
	rl.KeyThree: EventShapeSelectPrefix + string(systems.ShapeTriangle),
}

// buttonShapes maps the shape buttons to their kinds.
var buttonShapes = map[ui.ButtonID]systems.Shape{
	ui.ButtonCircle:   systems.ShapeCircle,
	ui.ButtonSquare:   systems.ShapeSquare,
	ui.ButtonTriangle: systems.ShapeTriangle,
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.hud.Toggle()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	for key, event := range keyEvents {
		if rl.IsKeyPressed(key) {
			g.trigger(event)
		}
	}

	g.handleSceneClick()
}

// trigger runs an event from input and logs failures.
func (g *Game) trigger(event string) {
	if err := g.Trigger(event); err != nil {
		slog.Warn("event failed", "event", event, "error", err)
	}
}

// handleToolbar applies the toolbar's clicks and holds. Shape buttons
// select the click-to-place kind when placing, otherwise they spawn
// bursts while held.
func (g *Game) handleToolbar(in ui.ControlsInput) {
	held := make(map[systems.Shape]bool, len(buttonShapes))
	for _, id := range in.Held {
		if kind, ok := buttonShapes[id]; ok {
			held[kind] = true
		}
	}
	if !g.spawner.Placing() {
		for _, kind := range systems.Shapes {
			if held[kind] != g.spawner.Holding(kind) {
				if err := g.HoldShape(kind, held[kind]); err != nil {
					slog.Warn("hold failed", "shape", kind, "error", err)
				}
			}
		}
	}

	for _, id := range in.Clicked {
		switch id {
		case ui.ButtonCircle, ui.ButtonSquare, ui.ButtonTriangle:
			if g.spawner.Placing() {
				g.trigger(EventShapeSelectPrefix + string(buttonShapes[id]))
			}
		case ui.ButtonClear:
			g.trigger(EventShapesClear)
		case ui.ButtonBorders:
			g.trigger(EventToggleBordered)
		case ui.ButtonLock:
			g.trigger(EventToggleLocked)
		case ui.ButtonWater:
			g.trigger(EventEmissionToggle)
		case ui.ButtonPlacing:
			g.trigger(EventTogglePlacing)
		}
	}
}

// handleSceneClick places the selected shape where the scene was clicked.
func (g *Game) handleSceneClick() {
	if !g.spawner.Placing() || !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if !g.viewport.Contains(mouse.X, mouse.Y) {
		return
	}
	x, y := g.viewport.ScreenToScene(mouse.X, mouse.Y)
	if _, err := g.PlaceAt(float64(x), float64(y)); err != nil {
		slog.Warn("place failed", "x", x, "y", y, "error", err)
	}
}

// handleResize checks for window resize and resizes the scene to fill the
// window above the toolbar.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight()) - ui.ToolbarHeight
	if w <= 0 || h <= 0 {
		return
	}
	g.viewport.Resize(w, h)
	if err := g.Resize(float64(w), float64(h)); err != nil {
		slog.Warn("resize failed", "error", err)
	}
}
