package systems

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/fluidbox/clock"
	"github.com/pthm-cable/fluidbox/physics"
)

// EmitterState is the emission scheduler's mode.
type EmitterState uint8

const (
	EmitterIdle EmitterState = iota
	EmitterEmitting
)

func (s EmitterState) String() string {
	if s == EmitterEmitting {
		return "emitting"
	}
	return "idle"
}

// EmitterConfig holds emission parameters.
type EmitterConfig struct {
	Rate     int // particles per cycle
	Max      int // population ceiling
	Interval time.Duration
	Lifespan time.Duration
	Y        float64 // emission height
	BandMin  float64 // fraction of scene width
	BandMax  float64
}

// Emitter drives periodic water emission on a logical clock. Each cycle
// retires the oldest particles needed to stay under Max, then emits a batch
// across the top band of the scene. Every emitted particle expires naturally
// after Lifespan unless it is retired or flushed first.
type Emitter struct {
	cfg    EmitterConfig
	clock  *clock.Clock
	world  physics.World
	pool   *Pool
	rng    *rand.Rand
	events Events

	state EmitterState
	width float64
	timer clock.TimerID
}

// NewEmitter creates an idle emitter.
func NewEmitter(cfg EmitterConfig, clk *clock.Clock, world physics.World, pool *Pool, rng *rand.Rand, events Events) *Emitter {
	return &Emitter{
		cfg:    cfg,
		clock:  clk,
		world:  world,
		pool:   pool,
		rng:    rng,
		events: eventsOrNop(events),
	}
}

// State returns the current mode.
func (e *Emitter) State() EmitterState {
	return e.state
}

// Width returns the scene width used for the emission band.
func (e *Emitter) Width() float64 {
	return e.width
}

// SetWidth updates the emission band for a resized scene.
func (e *Emitter) SetWidth(width float64) {
	e.width = width
}

// Start begins emitting across a scene of the given width. Starting while
// already emitting re-arms the periodic timer.
func (e *Emitter) Start(width float64) {
	e.width = width
	if e.timer != 0 {
		e.clock.Cancel(e.timer)
	}
	e.timer = e.clock.Every(e.cfg.Interval, e.fire)
	e.state = EmitterEmitting
	slog.Info("emission started", "width", width, "interval", e.cfg.Interval, "rate", e.cfg.Rate)
}

// Stop cancels emission and flushes every live particle from the world.
// If the flush fails the particles stay live and Stop can be called again.
func (e *Emitter) Stop() error {
	if e.timer != 0 {
		e.clock.Cancel(e.timer)
		e.timer = 0
	}
	e.state = EmitterIdle

	live := e.pool.LiveParticles()
	if len(live) == 0 {
		return nil
	}
	if err := e.retire(live); err != nil {
		e.events.RecordEngineFailure("emitter")
		return fmt.Errorf("flush %d particles: %w", len(live), err)
	}
	slog.Info("emission stopped", "flushed", len(live))
	return nil
}

func (e *Emitter) fire() {
	if err := e.Cycle(); err != nil {
		e.events.RecordEngineFailure("emitter")
		slog.Warn("emission cycle failed", "error", err)
	}
}

// Cycle runs one emission cycle immediately. On error nothing from the
// failed step is kept and the next cycle retries.
func (e *Emitter) Cycle() error {
	count := min(e.cfg.Rate, e.cfg.Max)
	if count <= 0 {
		return nil
	}

	if over := e.pool.Live() + count - e.cfg.Max; over > 0 {
		if err := e.retire(e.pool.Oldest(over)); err != nil {
			return fmt.Errorf("forced retirement of %d: %w", over, err)
		}
		e.events.RecordForcedRetirement(over)
	}

	now := e.clock.Now()
	batch := make([]*Particle, count)
	bodies := make([]*physics.Body, count)
	lo := e.width * e.cfg.BandMin
	span := e.width * (e.cfg.BandMax - e.cfg.BandMin)
	for i := range batch {
		x := lo + e.rng.Float64()*span
		batch[i] = e.pool.Acquire(x, e.cfg.Y, now)
		bodies[i] = batch[i].Body
	}

	if err := e.world.AddBodies(bodies...); err != nil {
		for _, p := range batch {
			e.pool.Release(p)
		}
		return fmt.Errorf("emit %d: %w", count, err)
	}

	for _, p := range batch {
		p.expiry = e.clock.After(e.cfg.Lifespan, e.expireFunc(p, p.gen))
	}
	e.events.RecordEmitted(count)
	return nil
}

// retire removes particles from the world, cancels their expiry and
// releases them. Nothing changes if the removal fails.
func (e *Emitter) retire(ps []*Particle) error {
	if len(ps) == 0 {
		return nil
	}
	bodies := make([]*physics.Body, len(ps))
	for i, p := range ps {
		bodies[i] = p.Body
	}
	if err := e.world.RemoveBodies(bodies...); err != nil {
		return err
	}
	for _, p := range ps {
		if p.expiry != 0 {
			e.clock.Cancel(p.expiry)
		}
		e.pool.Release(p)
	}
	return nil
}

// expireFunc returns the natural expiry callback for one acquisition of p.
// A stale callback (p released since) does nothing.
func (e *Emitter) expireFunc(p *Particle, gen uint32) func() {
	return func() {
		if !p.live || p.gen != gen {
			return
		}
		p.expiry = 0
		if err := e.world.RemoveBodies(p.Body); err != nil {
			e.events.RecordEngineFailure("emitter")
			slog.Warn("particle expiry failed", "error", err)
			p.expiry = e.clock.After(e.cfg.Interval, e.expireFunc(p, gen))
			return
		}
		e.pool.Release(p)
		e.events.RecordNaturalExpiry()
	}
}
