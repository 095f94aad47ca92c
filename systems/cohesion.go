package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/fluidbox/physics"
)

// ParticleState is a particle's kinematic snapshot for one cohesion pass.
type ParticleState struct {
	X, Y   float64
	VX, VY float64
}

// CohesionParams configures the cohesion pass.
type CohesionParams struct {
	Radius  float64 // particle radius
	Force   float64 // velocity added per pair per tick
	Range   float64 // interaction distance as a multiple of Radius
	Damping float64 // horizontal velocity scale per tick
}

// Cohere damps horizontal velocity, then pulls every pair closer than
// Range*Radius towards each other by Force along the line between them.
// Coincident pairs are skipped. Only velocities are modified.
func Cohere(states []ParticleState, p CohesionParams) {
	for i := range states {
		states[i].VX *= p.Damping
	}

	reach := p.Range * p.Radius
	reachSq := reach * reach
	for i := 0; i < len(states); i++ {
		a := &states[i]
		for j := i + 1; j < len(states); j++ {
			b := &states[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			distSq := dx*dx + dy*dy
			if distSq == 0 || distSq >= reachSq {
				continue
			}
			dist := math.Sqrt(distSq)
			fx := dx / dist * p.Force
			fy := dy / dist * p.Force
			a.VX += fx
			a.VY += fy
			b.VX -= fx
			b.VY -= fy
		}
	}
}

// Cohesion applies Cohere to the live water particles once per tick.
type Cohesion struct {
	params CohesionParams
	world  physics.World
	pool   *Pool
	events Events

	states []ParticleState
}

// NewCohesion creates a cohesion solver over the pool's live set.
func NewCohesion(params CohesionParams, world physics.World, pool *Pool, events Events) *Cohesion {
	return &Cohesion{
		params: params,
		world:  world,
		pool:   pool,
		events: eventsOrNop(events),
	}
}

// Params returns the active parameters.
func (c *Cohesion) Params() CohesionParams {
	return c.params
}

// Apply reads every live particle's state, computes the pass, then writes
// velocities back. A read failure aborts before anything is written. Writes
// go one particle at a time in live order: a write failure stops the pass,
// and particles written before it keep their new velocities.
func (c *Cohesion) Apply() error {
	live := c.pool.live
	if len(live) == 0 {
		return nil
	}

	c.states = c.states[:0]
	for i, p := range live {
		x, y, err := c.world.Position(p.Body)
		if err != nil {
			c.events.RecordEngineFailure("cohesion")
			return fmt.Errorf("read position of particle %d: %w", i, err)
		}
		vx, vy, err := c.world.Velocity(p.Body)
		if err != nil {
			c.events.RecordEngineFailure("cohesion")
			return fmt.Errorf("read velocity of particle %d: %w", i, err)
		}
		c.states = append(c.states, ParticleState{X: x, Y: y, VX: vx, VY: vy})
	}

	Cohere(c.states, c.params)

	for i, p := range live {
		s := c.states[i]
		if err := c.world.SetVelocity(p.Body, s.VX, s.VY); err != nil {
			c.events.RecordEngineFailure("cohesion")
			return fmt.Errorf("write velocity of particle %d: %w", i, err)
		}
	}
	return nil
}
