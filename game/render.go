package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidbox/systems"
	"github.com/pthm-cable/fluidbox/telemetry"
	"github.com/pthm-cable/fluidbox/ui"
)

const controlsLegend = "[W] water  [B] borders  [L] lock  [O] open  [P] place  [1-3] shape  [C] clear  [SPACE] pause  [</>] speed  [H] hud"

// Draw renders the scene, the HUD and the toolbar.
func (g *Game) Draw() {
	start := time.Now()

	rl.BeginDrawing()
	bg := g.cfg.Derived.BackgroundColor
	rl.ClearBackground(rl.Color{R: bg.R, G: bg.G, B: bg.B, A: bg.A})

	g.bodies.Draw(g.engine)

	g.hud.Draw(ui.HUDData{
		Tick:     g.tick,
		SimTime:  g.clock.Now(),
		Speed:    g.stepsPerUpdate,
		FPS:      rl.GetFPS(),
		Paused:   g.paused,
		Live:     g.pool.Live(),
		Free:     g.pool.Free(),
		Max:      g.cfg.Water.MaxParticles,
		Shapes:   g.spawner.Count(),
		Bodies:   g.engine.Len(),
		Boundary: g.boundary.Mode().String(),
		Emitting: g.emitter.State() == systems.EmitterEmitting,
		Placing:  g.spawner.Placing(),
		Selected: string(g.spawner.Selected()),
		Engine:   engineName(g.engine),
	})

	barY := float32(rl.GetScreenHeight()) - ui.ToolbarHeight
	g.hud.DrawControls(int32(barY), controlsLegend)
	in := g.controls.Draw(barY, float32(rl.GetScreenWidth()), g.controlsState())

	rl.EndDrawing()

	if !g.paused {
		g.perfCollector.AddToLastTick(telemetry.PhaseRender, time.Since(start))
	}
	g.handleToolbar(in)
}

func (g *Game) controlsState() ui.ControlsState {
	mode := g.boundary.Mode()
	return ui.ControlsState{
		Emitting: g.emitter.State() == systems.EmitterEmitting,
		Placing:  g.spawner.Placing(),
		Bordered: mode == systems.BoundaryBordered,
		Locked:   mode == systems.BoundaryLocked,
		Selected: string(g.spawner.Selected()),
	}
}
