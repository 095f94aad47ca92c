// Package physics is the gateway between the playground and a rigid-body
// engine. Core components only see the World interface; hosts drive an
// Engine, which adds lifecycle, stepping and iteration.
package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable is returned by every call made before Start or after Stop.
	ErrEngineUnavailable = errors.New("physics: engine not initialized")
	// ErrBodyPresent is returned when adding a body that is already in the world.
	ErrBodyPresent = errors.New("physics: body already in world")
	// ErrBodyAbsent is returned when referencing a body that is not in the world.
	ErrBodyAbsent = errors.New("physics: body not in world")
)

// World is the narrow contract used by the pool, emitter, cohesion solver and
// boundary state machine. Calls are forwarded synchronously and are
// atomic-or-nothing: a failed batch leaves the world unchanged.
type World interface {
	AddBodies(bodies ...*Body) error
	RemoveBodies(bodies ...*Body) error
	SetVelocity(b *Body, vx, vy float64) error
	Position(b *Body) (x, y float64, err error)
	Velocity(b *Body) (vx, vy float64, err error)
}

// BodyVisitor receives a body with its live position and rotation.
type BodyVisitor func(b *Body, x, y, angle float64)

// Engine is a World with a lifecycle, driven by the host.
type Engine interface {
	World

	// Start initializes the engine. Calling Start twice is a no-op.
	Start() error
	// Stop clears the world and releases the engine.
	Stop()
	Ready() bool

	// Step integrates the world by dt seconds.
	Step(dt float64) error
	// EachBody visits bodies in insertion order.
	EachBody(fn BodyVisitor)
	// Len returns the number of bodies in the world.
	Len() int
}

// membership tracks which bodies are in a world, in insertion order.
type membership struct {
	index map[*Body]int
	order []*Body
}

func newMembership() membership {
	return membership{index: make(map[*Body]int)}
}

func (m *membership) has(b *Body) bool {
	_, ok := m.index[b]
	return ok
}

func (m *membership) add(b *Body) {
	m.index[b] = len(m.order)
	m.order = append(m.order, b)
}

func (m *membership) remove(b *Body) {
	i, ok := m.index[b]
	if !ok {
		return
	}
	copy(m.order[i:], m.order[i+1:])
	m.order[len(m.order)-1] = nil
	m.order = m.order[:len(m.order)-1]
	delete(m.index, b)
	for j := i; j < len(m.order); j++ {
		m.index[m.order[j]] = j
	}
}

func (m *membership) clear() {
	m.index = make(map[*Body]int)
	m.order = m.order[:0]
}

// checkAdd validates a whole batch before any body is added.
func (m *membership) checkAdd(bodies []*Body) error {
	seen := make(map[*Body]struct{}, len(bodies))
	for i, b := range bodies {
		if b == nil {
			return fmt.Errorf("add body %d: nil body", i)
		}
		if _, dup := seen[b]; dup || m.has(b) {
			return fmt.Errorf("add %s body %d: %w", b.Kind, i, ErrBodyPresent)
		}
		seen[b] = struct{}{}
	}
	return nil
}

// checkRemove validates a whole batch before any body is removed.
func (m *membership) checkRemove(bodies []*Body) error {
	seen := make(map[*Body]struct{}, len(bodies))
	for i, b := range bodies {
		if b == nil {
			return fmt.Errorf("remove body %d: nil body", i)
		}
		if _, dup := seen[b]; dup || !m.has(b) {
			return fmt.Errorf("remove %s body %d: %w", b.Kind, i, ErrBodyAbsent)
		}
		seen[b] = struct{}{}
	}
	return nil
}
