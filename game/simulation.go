package game

import (
	"log/slog"

	"github.com/pthm-cable/fluidbox/telemetry"
)

// simulationStep runs one tick: clock callbacks (emission, expiry, shape
// bursts), the cohesion pass, then the engine step. A failing component is
// logged and counted and the others still run.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseClock)
	g.clock.Advance(g.cfg.Derived.DT)

	g.perfCollector.StartPhase(telemetry.PhaseCohesion)
	if err := g.cohesion.Apply(); err != nil {
		slog.Warn("cohesion pass failed", "tick", g.tick, "error", err)
	}

	g.perfCollector.StartPhase(telemetry.PhaseStep)
	if err := g.engine.Step(g.cfg.Physics.DT); err != nil {
		g.collector.RecordEngineFailure("step")
		slog.Warn("engine step failed", "tick", g.tick, "error", err)
	}

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// UpdateHeadless runs stepsPerUpdate ticks without input or rendering.
func (g *Game) UpdateHeadless() {
	if g.paused {
		return
	}
	for range g.stepsPerUpdate {
		g.simulationStep()
	}
}

// Update handles input, then runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		return
	}
	for range g.stepsPerUpdate {
		g.simulationStep()
	}
}

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}
