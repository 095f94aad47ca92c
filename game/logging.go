package game

import (
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/fluidbox/physics"
	"github.com/pthm-cable/fluidbox/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logPerfStats logs a human-readable breakdown of tick time by phase.
func (g *Game) logPerfStats() {
	stats := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d (speed %dx) | FPS: %.0f ===", g.tick, g.stepsPerUpdate, stats.FPS)
	Logf("Avg tick time: %s (min %s, max %s)",
		stats.AvgTickDuration.Round(time.Microsecond),
		stats.MinTickDuration.Round(time.Microsecond),
		stats.MaxTickDuration.Round(time.Microsecond))

	for _, phase := range []string{telemetry.PhaseClock, telemetry.PhaseCohesion, telemetry.PhaseStep, telemetry.PhaseTelemetry} {
		Logf("  %-12s %10s  %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), stats.PhasePct[phase])
	}
	Logf("")
}

// logWorldState logs the population of the world by body tag.
func (g *Game) logWorldState() {
	var counts [4]int
	g.engine.EachBody(func(b *physics.Body, _, _, _ float64) {
		if int(b.Tag) < len(counts) {
			counts[b.Tag]++
		}
	})

	Logf("=== World @ Tick %d (%.1fs) ===", g.tick, g.clock.Now().Seconds())
	Logf("Bodies: %d | Shapes: %d | Water: %d | Walls: %d | Ground: %d",
		g.engine.Len(), counts[physics.TagShape], counts[physics.TagWater], counts[physics.TagWall], counts[physics.TagGround])
	Logf("Pool: %d live, %d free, %d total | Emitter: %s | Boundary: %s",
		g.pool.Live(), g.pool.Free(), g.pool.Total(), g.emitter.State(), g.boundary.Mode())
	Logf("Clock: %d timers pending, %d fired", g.clock.Pending(), g.clock.Fired())
	Logf("")
}
