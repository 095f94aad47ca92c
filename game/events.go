package game

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pthm-cable/fluidbox/physics"
	"github.com/pthm-cable/fluidbox/systems"
)

// ErrUnknownEvent is returned by Trigger for an event name it does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// Events accepted by Trigger.
const (
	EventEmissionStart    = "emission.start"
	EventEmissionStop     = "emission.stop"
	EventEmissionToggle   = "emission.toggle"
	EventBoundaryOpen     = "boundary.setOpen"
	EventBoundaryBordered = "boundary.setBordered"
	EventBoundaryLocked   = "boundary.setLocked"
	EventToggleBordered   = "boundary.toggleBordered"
	EventToggleLocked     = "boundary.toggleLocked"
	EventTogglePlacing    = "spawner.togglePlacing"
	EventShapesClear      = "shapes.clear"

	// Followed by a shape kind, e.g. "shape.spawn.circle" spawns one at the
	// scene centre and "shape.select.square" picks the click-to-place kind.
	EventShapeSpawnPrefix  = "shape.spawn."
	EventShapeSelectPrefix = "shape.select."
)

// Trigger dispatches a named host event to the owning component.
func (g *Game) Trigger(event string) error {
	switch event {
	case EventEmissionStart:
		g.emitter.Start(g.width)
		return nil
	case EventEmissionStop:
		return g.emitter.Stop()
	case EventEmissionToggle:
		if g.emitter.State() == systems.EmitterEmitting {
			return g.emitter.Stop()
		}
		g.emitter.Start(g.width)
		return nil
	case EventBoundaryOpen:
		return g.boundary.Set(systems.BoundaryOpen)
	case EventBoundaryBordered:
		return g.boundary.Set(systems.BoundaryBordered)
	case EventBoundaryLocked:
		return g.boundary.Set(systems.BoundaryLocked)
	case EventToggleBordered:
		return g.boundary.Toggle(systems.BoundaryBordered)
	case EventToggleLocked:
		return g.boundary.Toggle(systems.BoundaryLocked)
	case EventTogglePlacing:
		g.spawner.SetPlacing(!g.spawner.Placing())
		return nil
	case EventShapesClear:
		return g.spawner.Clear()
	}

	if kind, ok := strings.CutPrefix(event, EventShapeSpawnPrefix); ok {
		_, err := g.spawner.Spawn(systems.Shape(kind), g.width/2, g.height/2)
		return err
	}
	if kind, ok := strings.CutPrefix(event, EventShapeSelectPrefix); ok {
		return g.spawner.Select(systems.Shape(kind))
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

// HoldShape starts or stops hold-to-spawn bursts of a kind.
func (g *Game) HoldShape(kind systems.Shape, on bool) error {
	return g.spawner.Hold(kind, on)
}

// PlaceAt spawns the selected kind at scene (x, y) in click-to-place mode.
// Returns nil, nil outside click-to-place mode.
func (g *Game) PlaceAt(x, y float64) (*physics.Body, error) {
	return g.spawner.Click(x, y)
}

// Resize changes the scene size. The emission band, walls, ground and burst
// point follow the new dimensions. Every component is resized even if an
// earlier one fails, and a failed rebuild is retried by the next call even
// at the same size.
func (g *Game) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %vx%v: size must be positive", width, height)
	}
	if width == g.width && height == g.height && !g.sceneStale {
		return nil
	}
	g.width, g.height = width, height

	if r, ok := g.engine.(interface{ Resize(w, h float64) }); ok {
		r.Resize(width, height)
	}
	g.emitter.SetWidth(width)
	g.spawner.Resize(width, height)

	var errs []error
	if err := g.boundary.Resize(width, height); err != nil {
		errs = append(errs, err)
	}
	if err := g.placeGround(); err != nil {
		errs = append(errs, err)
	}
	if g.viewport != nil {
		g.viewport.SetScene(float32(width), float32(height))
	}

	g.sceneStale = len(errs) > 0
	if g.sceneStale {
		return errors.Join(errs...)
	}
	slog.Info("scene resized", "width", width, "height", height)
	return nil
}
