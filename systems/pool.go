package systems

import (
	"cmp"
	"image/color"
	"slices"
	"time"

	"github.com/pthm-cable/fluidbox/clock"
	"github.com/pthm-cable/fluidbox/physics"
)

// Particle is one pooled water body. Its Body pointer is stable across
// recycling, so engines can reuse their native representation.
type Particle struct {
	Body *physics.Body

	expiresAt time.Duration
	seq       uint64 // acquisition order
	gen       uint32 // bumped on every release
	live      bool
	expiry    clock.TimerID
	pool      *Pool
}

// Live reports whether the particle is currently acquired.
func (p *Particle) Live() bool {
	return p.live
}

// ExpiresAt returns the logical time of natural expiry.
func (p *Particle) ExpiresAt() time.Duration {
	return p.expiresAt
}

// Generation changes every time the particle is released.
func (p *Particle) Generation() uint32 {
	return p.gen
}

// PoolConfig holds the defaults applied to every particle.
type PoolConfig struct {
	Radius   float64
	Material physics.Material
	Color    color.RGBA
	Lifespan time.Duration
}

// Pool recycles water particles. Every particle it created is in exactly one
// of the live or free sets. The pool never touches the engine; callers add
// and remove bodies around Acquire and Release.
type Pool struct {
	cfg  PoolConfig
	live []*Particle // acquisition order
	free []*Particle // LIFO
	seq  uint64
}

// NewPool creates an empty pool.
func NewPool(cfg PoolConfig) *Pool {
	return &Pool{cfg: cfg}
}

// Acquire returns a live particle placed at (x, y) with zero velocity and a
// fresh lifespan starting at now. A free particle is reused when available.
func (p *Pool) Acquire(x, y float64, now time.Duration) *Particle {
	var pt *Particle
	if n := len(p.free); n > 0 {
		pt = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		body := physics.NewCircle(x, y, p.cfg.Radius, p.cfg.Material)
		body.Color = p.cfg.Color
		body.Tag = physics.TagWater
		pt = &Particle{Body: body, pool: p}
	}

	p.seq++
	pt.Body.X, pt.Body.Y = x, y
	pt.Body.VX, pt.Body.VY = 0, 0
	pt.expiresAt = now + p.cfg.Lifespan
	pt.seq = p.seq
	pt.expiry = 0
	pt.live = true
	p.live = append(p.live, pt)
	return pt
}

// Release moves a live particle to the free set. Releasing a free particle,
// nil, or one from another pool does nothing.
func (p *Pool) Release(pt *Particle) {
	if pt == nil || pt.pool != p || !pt.live {
		return
	}
	i := slices.Index(p.live, pt)
	if i < 0 {
		return
	}
	p.live = slices.Delete(p.live, i, i+1)
	pt.live = false
	pt.gen++
	pt.expiry = 0
	p.free = append(p.free, pt)
}

// Live returns the number of acquired particles.
func (p *Pool) Live() int { return len(p.live) }

// Free returns the number of particles waiting for reuse.
func (p *Pool) Free() int { return len(p.free) }

// Total returns the number of particles ever created.
func (p *Pool) Total() int { return len(p.live) + len(p.free) }

// LiveParticles returns a copy of the live set in acquisition order.
func (p *Pool) LiveParticles() []*Particle {
	return slices.Clone(p.live)
}

// Oldest returns up to n live particles with the least remaining lifespan,
// ties broken by acquisition order.
func (p *Pool) Oldest(n int) []*Particle {
	if n <= 0 {
		return nil
	}
	sorted := slices.Clone(p.live)
	slices.SortStableFunc(sorted, func(a, b *Particle) int {
		if c := cmp.Compare(a.expiresAt, b.expiresAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
