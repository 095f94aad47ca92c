package systems

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/fluidbox/clock"
	"github.com/pthm-cable/fluidbox/physics"
)

// ErrUnknownShape is returned for a shape kind the spawner cannot build.
var ErrUnknownShape = errors.New("unknown shape kind")

// Shape names a user-spawnable body kind.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
)

// Shapes lists the spawnable kinds in burst order.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeTriangle}

// ShapeStyle describes how one kind is built.
type ShapeStyle struct {
	Size        float64 // radius for circles and triangles, side for squares
	Restitution float64
	Density     float64
	Friction    float64
	AirFriction float64
	Color       color.RGBA
}

// SpawnerConfig holds shape styles and hold-to-spawn burst parameters.
type SpawnerConfig struct {
	Styles        map[Shape]ShapeStyle
	BurstInterval time.Duration
	BurstCount    int
}

// Spawner creates user shapes. Shapes are never pooled; each spawn builds
// new bodies. In hold mode, held kinds burst at the scene centre on a
// periodic timer. In click-to-place mode, clicks spawn the selected kind.
type Spawner struct {
	cfg    SpawnerConfig
	clock  *clock.Clock
	world  physics.World
	rng    *rand.Rand
	events Events

	shapes   []*physics.Body
	held     map[Shape]bool
	timer    clock.TimerID
	placing  bool
	selected Shape

	centerX, centerY float64
}

// NewSpawner creates a spawner for a width x height scene.
func NewSpawner(cfg SpawnerConfig, clk *clock.Clock, world physics.World, rng *rand.Rand, width, height float64, events Events) *Spawner {
	return &Spawner{
		cfg:      cfg,
		clock:    clk,
		world:    world,
		rng:      rng,
		events:   eventsOrNop(events),
		held:     make(map[Shape]bool),
		selected: ShapeCircle,
		centerX:  width / 2,
		centerY:  height / 2,
	}
}

// Build creates an unattached body of the given kind centred at (x, y).
func (s *Spawner) Build(kind Shape, x, y float64) (*physics.Body, error) {
	style, ok := s.cfg.Styles[kind]
	if !ok {
		return nil, fmt.Errorf("build %q: %w", kind, ErrUnknownShape)
	}
	mat := physics.Material{
		Density:     style.Density,
		Friction:    style.Friction,
		AirFriction: style.AirFriction,
		Restitution: style.Restitution,
	}

	var body *physics.Body
	switch kind {
	case ShapeCircle:
		body = physics.NewCircle(x, y, style.Size, mat)
	case ShapeSquare:
		body = physics.NewBox(x, y, style.Size, style.Size, mat)
	case ShapeTriangle:
		body = physics.NewPolygon(x, y, 3, style.Size, mat)
	default:
		return nil, fmt.Errorf("build %q: %w", kind, ErrUnknownShape)
	}
	body.Color = style.Color
	body.Tag = physics.TagShape
	return body, nil
}

// Spawn adds one shape at (x, y).
func (s *Spawner) Spawn(kind Shape, x, y float64) (*physics.Body, error) {
	body, err := s.Build(kind, x, y)
	if err != nil {
		return nil, err
	}
	if err := s.world.AddBodies(body); err != nil {
		s.events.RecordEngineFailure("spawner")
		return nil, fmt.Errorf("spawn %s: %w", kind, err)
	}
	s.shapes = append(s.shapes, body)
	s.events.RecordShapesSpawned(1)
	return body, nil
}

// Burst adds n shapes of each kind around the scene centre in one batch.
// Bodies are jittered by up to one unit so stacked shapes can separate.
func (s *Spawner) Burst(kinds []Shape, n int) error {
	if n <= 0 || len(kinds) == 0 {
		return nil
	}
	batch := make([]*physics.Body, 0, n*len(kinds))
	for i := 0; i < n; i++ {
		for _, kind := range kinds {
			x := s.centerX + s.rng.Float64()*2 - 1
			y := s.centerY + s.rng.Float64()*2 - 1
			body, err := s.Build(kind, x, y)
			if err != nil {
				return err
			}
			batch = append(batch, body)
		}
	}
	if err := s.world.AddBodies(batch...); err != nil {
		s.events.RecordEngineFailure("spawner")
		return fmt.Errorf("burst of %d: %w", len(batch), err)
	}
	s.shapes = append(s.shapes, batch...)
	s.events.RecordShapesSpawned(len(batch))
	return nil
}

// Hold starts or stops hold-to-spawn for a kind. Ignored while placing.
func (s *Spawner) Hold(kind Shape, on bool) error {
	if _, ok := s.cfg.Styles[kind]; !ok {
		return fmt.Errorf("hold %q: %w", kind, ErrUnknownShape)
	}
	if s.placing {
		return nil
	}
	if on {
		s.held[kind] = true
	} else {
		delete(s.held, kind)
	}
	s.syncTimer()
	return nil
}

// Holding reports whether kind is held.
func (s *Spawner) Holding(kind Shape) bool {
	return s.held[kind]
}

func (s *Spawner) syncTimer() {
	switch {
	case len(s.held) > 0 && s.timer == 0:
		s.timer = s.clock.Every(s.cfg.BurstInterval, s.burst)
	case len(s.held) == 0 && s.timer != 0:
		s.clock.Cancel(s.timer)
		s.timer = 0
	}
}

func (s *Spawner) burst() {
	kinds := make([]Shape, 0, len(Shapes))
	for _, k := range Shapes {
		if s.held[k] {
			kinds = append(kinds, k)
		}
	}
	if err := s.Burst(kinds, s.cfg.BurstCount); err != nil {
		slog.Warn("shape burst failed", "error", err)
	}
}

// SetPlacing switches click-to-place mode. Entering it releases every held
// kind.
func (s *Spawner) SetPlacing(on bool) {
	s.placing = on
	if on {
		clear(s.held)
		s.syncTimer()
	}
}

// Placing reports whether click-to-place mode is on.
func (s *Spawner) Placing() bool {
	return s.placing
}

// Select sets the kind placed by Click.
func (s *Spawner) Select(kind Shape) error {
	if _, ok := s.cfg.Styles[kind]; !ok {
		return fmt.Errorf("select %q: %w", kind, ErrUnknownShape)
	}
	s.selected = kind
	return nil
}

// Selected returns the kind placed by Click.
func (s *Spawner) Selected() Shape {
	return s.selected
}

// Click spawns the selected kind at (x, y) in click-to-place mode.
func (s *Spawner) Click(x, y float64) (*physics.Body, error) {
	if !s.placing {
		return nil, nil
	}
	return s.Spawn(s.selected, x, y)
}

// Resize moves the burst point to the centre of a resized scene.
func (s *Spawner) Resize(width, height float64) {
	s.centerX, s.centerY = width/2, height/2
}

// Count returns the number of spawned shapes in the world.
func (s *Spawner) Count() int {
	return len(s.shapes)
}

// Clear removes every spawned shape.
func (s *Spawner) Clear() error {
	if len(s.shapes) == 0 {
		return nil
	}
	if err := s.world.RemoveBodies(s.shapes...); err != nil {
		s.events.RecordEngineFailure("spawner")
		return fmt.Errorf("clear %d shapes: %w", len(s.shapes), err)
	}
	slog.Info("shapes cleared", "count", len(s.shapes))
	s.shapes = nil
	return nil
}
