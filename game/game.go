// Package game wires the playground together: the physics engine, the water
// systems, the boundary, the shape spawner and telemetry, driven one tick at
// a time by a host loop.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/fluidbox/camera"
	"github.com/pthm-cable/fluidbox/clock"
	"github.com/pthm-cable/fluidbox/config"
	"github.com/pthm-cable/fluidbox/physics"
	"github.com/pthm-cable/fluidbox/renderer"
	"github.com/pthm-cable/fluidbox/systems"
	"github.com/pthm-cable/fluidbox/telemetry"
	"github.com/pthm-cable/fluidbox/ui"
)

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string  // empty disables CSV output
	Headless       bool
	Engine         string         // overrides physics.engine when set
	Physics        physics.Engine // overrides Engine when set
	StartWater     bool
	Boundary       string // initial boundary mode
	StepsPerUpdate int    // ticks per Update call, at least 1

	// StatsCallback, if set, receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Game owns every component of a running playground.
type Game struct {
	cfg    *config.Config
	engine physics.Engine
	clock  *clock.Clock
	rng    *rand.Rand

	pool     *systems.Pool
	emitter  *systems.Emitter
	cohesion *systems.Cohesion
	boundary *systems.Boundary
	spawner  *systems.Spawner
	ground   *physics.Body

	width, height float64
	sceneStale    bool // walls or ground not yet rebuilt for width, height

	tick           int32
	paused         bool
	stepsPerUpdate int
	headless       bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// Graphics, nil when headless
	viewport *camera.Viewport
	bodies   *renderer.BodyRenderer
	controls *ui.ControlsPanel
	hud      *ui.HUD
}

// NewGameWithOptions creates a game, starts its engine and applies the
// initial water and boundary settings.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	engine := opts.Physics
	if engine == nil {
		name := cfg.Physics.Engine
		if opts.Engine != "" {
			name = opts.Engine
		}
		var err error
		engine, err = newEngine(name, cfg)
		if err != nil {
			return nil, err
		}
	}
	if err := engine.Start(); err != nil {
		return nil, fmt.Errorf("starting engine: %w", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	steps := max(opts.StepsPerUpdate, 1)

	g := &Game{
		cfg:            cfg,
		engine:         engine,
		clock:          clock.New(),
		rng:            rand.New(rand.NewSource(opts.Seed)),
		width:          float64(cfg.Screen.Width),
		height:         float64(cfg.Screen.Height),
		stepsPerUpdate: steps,
		headless:       opts.Headless,
		collector:      telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
	}

	g.pool = systems.NewPool(poolConfig(cfg))
	g.emitter = systems.NewEmitter(emitterConfig(cfg), g.clock, engine, g.pool, g.rng, g.collector)
	g.cohesion = systems.NewCohesion(cohesionParams(cfg), engine, g.pool, g.collector)
	g.boundary = systems.NewBoundary(boundaryConfig(cfg), engine, g.width, g.height, g.collector)
	g.spawner = systems.NewSpawner(spawnerConfig(cfg), g.clock, engine, g.rng, g.width, g.height, g.collector)

	if err := g.placeGround(); err != nil {
		engine.Stop()
		return nil, err
	}

	if opts.Boundary != "" {
		mode, err := systems.ParseBoundaryMode(opts.Boundary)
		if err != nil {
			engine.Stop()
			return nil, err
		}
		if err := g.boundary.Set(mode); err != nil {
			engine.Stop()
			return nil, fmt.Errorf("initial boundary: %w", err)
		}
	}
	if opts.StartWater {
		g.emitter.Start(g.width)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		engine.Stop()
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.viewport = camera.New(float32(g.width), float32(g.height), float32(g.width), float32(g.height))
		g.bodies = renderer.NewBodyRenderer(g.viewport)
		g.controls = ui.NewControlsPanel()
		g.hud = ui.NewHUD()
	}

	slog.Info("game created",
		"engine", engineName(engine),
		"width", g.width,
		"height", g.height,
		"seed", opts.Seed,
		"water", opts.StartWater,
		"boundary", g.boundary.Mode().String(),
	)
	return g, nil
}

// placeGround adds the static ground along the bottom edge, replacing any
// previous ground.
func (g *Game) placeGround() error {
	h := g.cfg.Boundary.GroundHeight
	ground := physics.NewStaticBox(g.width/2, g.height-h/2, g.width, h)
	ground.Material.Friction = g.cfg.Boundary.Friction
	ground.Color = g.cfg.Derived.GroundColor
	ground.Tag = physics.TagGround

	if g.ground != nil {
		if err := g.engine.RemoveBodies(g.ground); err != nil {
			return fmt.Errorf("removing ground: %w", err)
		}
		g.ground = nil
	}
	if err := g.engine.AddBodies(ground); err != nil {
		return fmt.Errorf("adding ground: %w", err)
	}
	g.ground = ground
	return nil
}

// Unload stops emission, shuts the engine down and closes output files.
func (g *Game) Unload() {
	if err := g.emitter.Stop(); err != nil {
		slog.Warn("flushing water on shutdown", "error", err)
	}
	g.engine.Stop()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of simulation ticks run so far.
func (g *Game) Tick() int32 {
	return g.tick
}

// Engine returns the physics engine.
func (g *Game) Engine() physics.Engine {
	return g.engine
}

// Pool returns the water particle pool.
func (g *Game) Pool() *systems.Pool {
	return g.pool
}

// Emitter returns the water emitter.
func (g *Game) Emitter() *systems.Emitter {
	return g.emitter
}

// Boundary returns the boundary state machine.
func (g *Game) Boundary() *systems.Boundary {
	return g.boundary
}

// Spawner returns the shape spawner.
func (g *Game) Spawner() *systems.Spawner {
	return g.spawner
}

// Ground returns the static ground body.
func (g *Game) Ground() *physics.Body {
	return g.ground
}

// Size returns the scene dimensions.
func (g *Game) Size() (width, height float64) {
	return g.width, g.height
}

// OutputDir returns the output directory, or "" when output is disabled.
func (g *Game) OutputDir() string {
	return g.outputManager.Dir()
}
