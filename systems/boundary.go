package systems

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/pthm-cable/fluidbox/physics"
)

// BoundaryMode selects which walls enclose the scene.
type BoundaryMode uint8

const (
	// BoundaryOpen has no walls.
	BoundaryOpen BoundaryMode = iota
	// BoundaryBordered has left, right and top walls.
	BoundaryBordered
	// BoundaryLocked has left, right and bottom walls, drawn translucent.
	BoundaryLocked
)

func (m BoundaryMode) String() string {
	switch m {
	case BoundaryBordered:
		return "bordered"
	case BoundaryLocked:
		return "locked"
	}
	return "open"
}

// ParseBoundaryMode parses "open", "bordered" or "locked".
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "":
		return BoundaryOpen, nil
	case "bordered", "borders":
		return BoundaryBordered, nil
	case "locked", "lock":
		return BoundaryLocked, nil
	}
	return BoundaryOpen, fmt.Errorf("unknown boundary mode %q", s)
}

// BoundaryConfig holds wall geometry and style.
type BoundaryConfig struct {
	Thickness   float64
	Friction    float64
	BorderColor color.RGBA
	LockColor   color.RGBA
}

// Boundary owns the wall set for the active mode. Its recorded walls always
// match what is in the world: a transition removes the old walls before
// adding the new ones, and a failed transition either restores the previous
// walls or settles in Open.
type Boundary struct {
	cfg    BoundaryConfig
	world  physics.World
	events Events

	mode          BoundaryMode
	walls         []*physics.Body
	width, height float64
}

// NewBoundary creates an Open boundary for a width x height scene.
func NewBoundary(cfg BoundaryConfig, world physics.World, width, height float64, events Events) *Boundary {
	return &Boundary{
		cfg:    cfg,
		world:  world,
		events: eventsOrNop(events),
		width:  width,
		height: height,
	}
}

// Mode returns the active mode.
func (b *Boundary) Mode() BoundaryMode {
	return b.mode
}

// Walls returns the walls currently in the world.
func (b *Boundary) Walls() []*physics.Body {
	return append([]*physics.Body(nil), b.walls...)
}

// Set switches to mode, rebuilding walls even if mode is already active.
func (b *Boundary) Set(mode BoundaryMode) error {
	prev := b.mode
	old := b.walls

	if len(old) > 0 {
		if err := b.world.RemoveBodies(old...); err != nil {
			b.events.RecordEngineFailure("boundary")
			return fmt.Errorf("remove %s walls: %w", prev, err)
		}
	}

	next := b.build(mode)
	if len(next) > 0 {
		if err := b.world.AddBodies(next...); err != nil {
			b.events.RecordEngineFailure("boundary")
			if len(old) > 0 && b.world.AddBodies(old...) == nil {
				return fmt.Errorf("add %s walls: %w", mode, err)
			}
			b.walls = nil
			b.transition(prev, BoundaryOpen)
			return fmt.Errorf("add %s walls, settled open: %w", mode, err)
		}
	}

	b.walls = next
	b.transition(prev, mode)
	return nil
}

func (b *Boundary) transition(from, to BoundaryMode) {
	b.mode = to
	if from != to {
		b.events.RecordBoundaryTransition(from.String(), to.String())
		slog.Info("boundary changed", "from", from.String(), "to", to.String())
	}
}

// Toggle switches to mode, or back to Open if mode is already active.
func (b *Boundary) Toggle(mode BoundaryMode) error {
	if mode == b.mode {
		return b.Set(BoundaryOpen)
	}
	return b.Set(mode)
}

// Resize records new scene dimensions and rebuilds the active walls.
func (b *Boundary) Resize(width, height float64) error {
	b.width, b.height = width, height
	if b.mode == BoundaryOpen {
		return nil
	}
	return b.Set(b.mode)
}

// build creates the wall bodies for mode against the current dimensions.
func (b *Boundary) build(mode BoundaryMode) []*physics.Body {
	t := b.cfg.Thickness
	w, h := b.width, b.height

	wall := func(x, y, bw, bh float64, c color.RGBA) *physics.Body {
		body := physics.NewStaticBox(x, y, bw, bh)
		body.Material.Friction = b.cfg.Friction
		body.Color = c
		body.Tag = physics.TagWall
		return body
	}

	switch mode {
	case BoundaryBordered:
		c := b.cfg.BorderColor
		return []*physics.Body{
			wall(-t/2, h/2, t, h, c),
			wall(w+t/2, h/2, t, h, c),
			wall(w/2, -t/2, w, t, c),
		}
	case BoundaryLocked:
		c := b.cfg.LockColor
		return []*physics.Body{
			wall(-t/2, h/2, t, h, c),
			wall(w+t/2, h/2, t, h, c),
			wall(w/2, h+t/2, w+2*t, t, c),
		}
	}
	return nil
}
