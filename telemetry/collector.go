// Package telemetry provides windowed playground statistics, performance
// timing and CSV output.
package telemetry

// Sample holds the world state observed at the end of a window.
type Sample struct {
	Live     int // live water particles
	Free     int // pooled particles awaiting reuse
	Total    int // particles ever created
	Shapes   int // spawned shapes in the world
	Boundary string
	Emitting bool
	Speeds   []float64 // particle speeds, any order
}

// Collector accumulates events within time windows and produces WindowStats.
// It satisfies systems.Events.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	emitted             int
	forcedRetirements   int
	naturalExpiries     int
	engineFailures      int
	failuresByComponent map[string]int
	boundaryTransitions int
	shapesSpawned       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		failuresByComponent: make(map[string]int),
	}
}

// RecordEmitted records particles added by an emission cycle.
func (c *Collector) RecordEmitted(n int) {
	c.emitted += n
}

// RecordForcedRetirement records particles retired to stay under the ceiling.
func (c *Collector) RecordForcedRetirement(n int) {
	c.forcedRetirements += n
}

// RecordNaturalExpiry records a particle removed at the end of its lifespan.
func (c *Collector) RecordNaturalExpiry() {
	c.naturalExpiries++
}

// RecordEngineFailure records a rejected engine call from a component.
func (c *Collector) RecordEngineFailure(component string) {
	c.engineFailures++
	c.failuresByComponent[component]++
}

// RecordBoundaryTransition records a boundary mode change.
func (c *Collector) RecordBoundaryTransition(from, to string) {
	c.boundaryTransitions++
}

// RecordShapesSpawned records user shapes added to the world.
func (c *Collector) RecordShapesSpawned(n int) {
	c.shapesSpawned += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	speedMean, speedStd, speedP50, speedP90 := ComputeSpeedStats(s.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Live:     s.Live,
		Free:     s.Free,
		Total:    s.Total,
		Shapes:   s.Shapes,
		Boundary: s.Boundary,
		Emitting: s.Emitting,

		Emitted:             c.emitted,
		ForcedRetirements:   c.forcedRetirements,
		NaturalExpiries:     c.naturalExpiries,
		EngineFailures:      c.engineFailures,
		EmitterFailures:     c.failuresByComponent["emitter"],
		CohesionFailures:    c.failuresByComponent["cohesion"],
		BoundaryFailures:    c.failuresByComponent["boundary"],
		BoundaryTransitions: c.boundaryTransitions,
		ShapesSpawned:       c.shapesSpawned,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.emitted = 0
	c.forcedRetirements = 0
	c.naturalExpiries = 0
	c.engineFailures = 0
	clear(c.failuresByComponent)
	c.boundaryTransitions = 0
	c.shapesSpawned = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
