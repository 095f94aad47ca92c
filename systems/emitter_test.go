package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/pthm-cable/fluidbox/physics"
)

// ---------- Emission cycles ----------

func TestEmitter_RetiresExactlyTheOverflow(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Rate = 4
	cfg.Max = 10
	f := newEmitterFixture(cfg)

	if err := f.emitter.Cycle(); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(100 * time.Millisecond)
	if err := f.emitter.Cycle(); err != nil {
		t.Fatal(err)
	}
	if f.pool.Live() != 8 {
		t.Fatalf("Live = %d, want 8", f.pool.Live())
	}
	first := f.pool.LiveParticles()[:4]
	oldest := []*physics.Body{first[0].Body, first[1].Body, first[2].Body}

	f.emitter.cfg.Rate = 5
	f.clock.Advance(100 * time.Millisecond)
	if err := f.emitter.Cycle(); err != nil {
		t.Fatal(err)
	}

	if f.pool.Live() != 10 || f.recorder.Len() != 10 {
		t.Errorf("live = %d, engine = %d, want 10", f.pool.Live(), f.recorder.Len())
	}
	if f.events.retired != 3 || f.events.emitted != 13 {
		t.Errorf("retired/emitted = %d/%d, want 3/13", f.events.retired, f.events.emitted)
	}

	ops := f.recorder.Ops
	if len(ops) != 4 {
		t.Fatalf("ops = %d, want 4", len(ops))
	}
	remove := ops[2]
	if remove.Kind != physics.OpRemove || len(remove.Bodies) != 3 {
		t.Fatalf("op[2] = %+v, want removal of 3", remove)
	}
	for i, b := range remove.Bodies {
		if b != oldest[i] {
			t.Errorf("retired body %d is not among the oldest", i)
		}
	}
	if ops[3].Kind != physics.OpAdd || len(ops[3].Bodies) != 5 {
		t.Errorf("op[3] = %+v, want add of 5", ops[3])
	}
	if !first[3].Live() || first[3].ExpiresAt() != 8*time.Second {
		t.Error("fourth particle of the first batch should survive untouched")
	}
}

func TestEmitter_RateAboveMaxEmitsMax(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Max = 3
	f := newEmitterFixture(cfg)

	_ = f.emitter.Cycle()
	if f.pool.Live() != 3 {
		t.Fatalf("Live = %d, want 3", f.pool.Live())
	}
	_ = f.emitter.Cycle()
	if f.pool.Live() != 3 || f.events.retired != 3 {
		t.Errorf("live/retired = %d/%d, want 3/3", f.pool.Live(), f.events.retired)
	}
}

func TestEmitter_PopulationNeverExceedsMax(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Max = 12
	f := newEmitterFixture(cfg)
	f.recorder.OnChange = func(r *physics.Recorder) {
		if n := r.CountTag(physics.TagWater); n > 12 {
			t.Errorf("engine holds %d particles, max 12", n)
		}
	}

	f.emitter.Start(800)
	for i := 0; i < 120; i++ {
		f.clock.Advance(16 * time.Millisecond)
	}

	if f.pool.Live() != 12 || f.recorder.Len() != 12 {
		t.Errorf("live = %d, engine = %d, want 12", f.pool.Live(), f.recorder.Len())
	}
	if f.pool.Total() > 12+cfg.Rate {
		t.Errorf("Total = %d, pool should recycle", f.pool.Total())
	}
}

func TestEmitter_EmissionBand(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Rate = 50
	f := newEmitterFixture(cfg)

	for i := 0; i < 4; i++ {
		_ = f.emitter.Cycle()
	}
	for _, p := range f.pool.LiveParticles() {
		if p.Body.X < 80 || p.Body.X > 720 {
			t.Errorf("x = %v outside [80, 720]", p.Body.X)
		}
		if p.Body.Y != 20 {
			t.Errorf("y = %v, want 20", p.Body.Y)
		}
	}
}

func TestEmitter_StartTwiceRearms(t *testing.T) {
	f := newEmitterFixture(defaultEmitterConfig())

	f.emitter.Start(800)
	f.clock.Advance(50 * time.Millisecond)
	f.emitter.Start(400)

	f.clock.Advance(60 * time.Millisecond)
	if f.events.emitted != 0 {
		t.Fatalf("emitted %d before the re-armed interval elapsed", f.events.emitted)
	}
	f.clock.Advance(40 * time.Millisecond)
	if f.events.emitted != 5 {
		t.Errorf("emitted = %d, want 5", f.events.emitted)
	}
	for _, p := range f.pool.LiveParticles() {
		if p.Body.X < 40 || p.Body.X > 360 {
			t.Errorf("x = %v outside the resized band", p.Body.X)
		}
	}
}

// ---------- Stop and flush ----------

func TestEmitter_StopFlushesEverything(t *testing.T) {
	f := newEmitterFixture(defaultEmitterConfig())
	f.emitter.Start(800)
	f.clock.Advance(300 * time.Millisecond)

	if f.pool.Live() != 15 || f.clock.Pending() != 16 {
		t.Fatalf("live/pending = %d/%d, want 15/16", f.pool.Live(), f.clock.Pending())
	}

	if err := f.emitter.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if f.emitter.State() != EmitterIdle {
		t.Errorf("State = %v, want idle", f.emitter.State())
	}
	if f.recorder.Len() != 0 || f.pool.Live() != 0 || f.pool.Free() != 15 {
		t.Errorf("engine/live/free = %d/%d/%d, want 0/0/15", f.recorder.Len(), f.pool.Live(), f.pool.Free())
	}
	if f.clock.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", f.clock.Pending())
	}

	f.clock.Advance(10 * time.Second)
	if f.events.expired != 0 || f.events.emitted != 15 {
		t.Errorf("expired/emitted = %d/%d after stop, want 0/15", f.events.expired, f.events.emitted)
	}
}

func TestEmitter_StopFailureKeepsParticlesForRetry(t *testing.T) {
	f := newEmitterFixture(defaultEmitterConfig())
	f.emitter.Start(800)
	f.clock.Advance(100 * time.Millisecond)

	f.recorder.Down = true
	err := f.emitter.Stop()
	if !errors.Is(err, physics.ErrEngineUnavailable) {
		t.Fatalf("Stop err = %v, want ErrEngineUnavailable", err)
	}
	if f.pool.Live() != 5 {
		t.Errorf("Live = %d after failed flush, want 5", f.pool.Live())
	}
	if f.emitter.State() != EmitterIdle {
		t.Errorf("State = %v, want idle", f.emitter.State())
	}

	f.recorder.Down = false
	if err := f.emitter.Stop(); err != nil {
		t.Fatalf("retry Stop: %v", err)
	}
	if f.pool.Live() != 0 || f.recorder.Len() != 0 {
		t.Errorf("live/engine = %d/%d, want 0/0", f.pool.Live(), f.recorder.Len())
	}
}

// ---------- Failure semantics ----------

func TestEmitter_FailedCycleRollsBack(t *testing.T) {
	f := newEmitterFixture(defaultEmitterConfig())
	f.emitter.Start(800)

	f.recorder.Down = true
	f.clock.Advance(100 * time.Millisecond)

	if f.pool.Live() != 0 || f.pool.Free() != 5 {
		t.Errorf("live/free = %d/%d, want 0/5", f.pool.Live(), f.pool.Free())
	}
	if f.clock.Pending() != 1 {
		t.Errorf("Pending = %d, want only the periodic timer", f.clock.Pending())
	}
	if f.events.failures["emitter"] != 1 || f.events.emitted != 0 {
		t.Errorf("failures/emitted = %d/%d, want 1/0", f.events.failures["emitter"], f.events.emitted)
	}
	if len(f.recorder.Ops) != 0 {
		t.Errorf("ops = %d, want none", len(f.recorder.Ops))
	}

	f.recorder.Down = false
	f.clock.Advance(100 * time.Millisecond)
	if f.pool.Live() != 5 || f.pool.Total() != 5 {
		t.Errorf("live/total = %d/%d, want 5/5 on retry", f.pool.Live(), f.pool.Total())
	}
}

// ---------- Natural expiry ----------

func TestEmitter_NaturalExpiry(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Rate = 1
	cfg.Lifespan = 250 * time.Millisecond
	f := newEmitterFixture(cfg)

	_ = f.emitter.Cycle()
	f.clock.Advance(249 * time.Millisecond)
	if f.pool.Live() != 1 {
		t.Fatalf("expired early")
	}
	f.clock.Advance(1 * time.Millisecond)

	if f.pool.Live() != 0 || f.pool.Free() != 1 || f.recorder.Len() != 0 {
		t.Errorf("live/free/engine = %d/%d/%d, want 0/1/0", f.pool.Live(), f.pool.Free(), f.recorder.Len())
	}
	if f.events.expired != 1 {
		t.Errorf("expired = %d, want 1", f.events.expired)
	}
}

func TestEmitter_RetiredParticleDoesNotExpireTwice(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Max = 5
	cfg.Lifespan = time.Second
	f := newEmitterFixture(cfg)

	_ = f.emitter.Cycle()
	f.clock.Advance(10 * time.Millisecond)
	// Retires the whole first batch and recycles the same particles.
	_ = f.emitter.Cycle()

	f.clock.Advance(995 * time.Millisecond)
	if f.events.expired != 0 || f.pool.Live() != 5 {
		t.Fatalf("expired/live = %d/%d, stale expiry fired", f.events.expired, f.pool.Live())
	}

	f.clock.Advance(10 * time.Millisecond)
	if f.events.expired != 5 || f.pool.Live() != 0 {
		t.Errorf("expired/live = %d/%d, want 5/0", f.events.expired, f.pool.Live())
	}
	if f.clock.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", f.clock.Pending())
	}
}

func TestEmitter_FailedExpiryRetries(t *testing.T) {
	cfg := defaultEmitterConfig()
	cfg.Rate = 1
	cfg.Lifespan = 200 * time.Millisecond
	f := newEmitterFixture(cfg)

	_ = f.emitter.Cycle()
	f.recorder.Down = true
	f.clock.Advance(200 * time.Millisecond)
	if f.pool.Live() != 1 || f.events.failures["emitter"] != 1 {
		t.Fatalf("live/failures = %d/%d, want 1/1", f.pool.Live(), f.events.failures["emitter"])
	}

	f.recorder.Down = false
	f.clock.Advance(99 * time.Millisecond)
	if f.pool.Live() != 1 {
		t.Fatal("retried before one emission interval")
	}
	f.clock.Advance(1 * time.Millisecond)
	if f.pool.Live() != 0 || f.events.expired != 1 {
		t.Errorf("live/expired = %d/%d, want 0/1", f.pool.Live(), f.events.expired)
	}
}
