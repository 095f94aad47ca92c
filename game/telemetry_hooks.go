package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/fluidbox/systems"
	"github.com/pthm-cable/fluidbox/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sample())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logWorldState()
		g.logPerfStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sample reads the current population and particle speeds.
func (g *Game) sample() telemetry.Sample {
	s := telemetry.Sample{
		Live:     g.pool.Live(),
		Free:     g.pool.Free(),
		Total:    g.pool.Total(),
		Shapes:   g.spawner.Count(),
		Boundary: g.boundary.Mode().String(),
		Emitting: g.emitter.State() == systems.EmitterEmitting,
	}

	live := g.pool.LiveParticles()
	s.Speeds = make([]float64, 0, len(live))
	for _, p := range live {
		vx, vy, err := g.engine.Velocity(p.Body)
		if err != nil {
			continue
		}
		s.Speeds = append(s.Speeds, math.Hypot(vx, vy))
	}
	return s
}
