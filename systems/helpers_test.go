package systems

import (
	"math/rand"
	"time"

	"github.com/pthm-cable/fluidbox/clock"
	"github.com/pthm-cable/fluidbox/physics"
)

// countingEvents tallies component events.
type countingEvents struct {
	emitted     int
	retired     int
	expired     int
	failures    map[string]int
	transitions [][2]string
	spawned     int
}

func newCountingEvents() *countingEvents {
	return &countingEvents{failures: make(map[string]int)}
}

func (c *countingEvents) RecordEmitted(n int) { c.emitted += n }
func (c *countingEvents) RecordForcedRetirement(n int) { c.retired += n }
func (c *countingEvents) RecordNaturalExpiry() { c.expired++ }
func (c *countingEvents) RecordEngineFailure(component string) {
	c.failures[component]++
}
func (c *countingEvents) RecordBoundaryTransition(from, to string) {
	c.transitions = append(c.transitions, [2]string{from, to})
}
func (c *countingEvents) RecordShapesSpawned(n int) { c.spawned += n }

var testWater = physics.Material{Density: 0.9, Friction: 0.1, AirFriction: 0.02, Restitution: 0.2}

func testPool(lifespan time.Duration) *Pool {
	return NewPool(PoolConfig{Radius: 8, Material: testWater, Lifespan: lifespan})
}

// emitterFixture wires an emitter to a running recorder.
type emitterFixture struct {
	clock    *clock.Clock
	recorder *physics.Recorder
	pool     *Pool
	events   *countingEvents
	emitter  *Emitter
}

func newEmitterFixture(cfg EmitterConfig) *emitterFixture {
	f := &emitterFixture{
		clock:    clock.New(),
		recorder: physics.NewRecorder(),
		pool:     testPool(cfg.Lifespan),
		events:   newCountingEvents(),
	}
	f.emitter = NewEmitter(cfg, f.clock, f.recorder, f.pool, rand.New(rand.NewSource(1)), f.events)
	f.emitter.SetWidth(800)
	return f
}

func defaultEmitterConfig() EmitterConfig {
	return EmitterConfig{
		Rate:     5,
		Max:      300,
		Interval: 100 * time.Millisecond,
		Lifespan: 8 * time.Second,
		Y:        20,
		BandMin:  0.1,
		BandMax:  0.9,
	}
}
