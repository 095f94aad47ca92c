// Package config provides configuration loading and access for the playground.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all playground configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Water     WaterConfig     `yaml:"water"`
	Boundary  BoundaryConfig  `yaml:"boundary"`
	Shapes    ShapesConfig    `yaml:"shapes"`
	Spawner   SpawnerConfig   `yaml:"spawner"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. The scene matches the window size.
type ScreenConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TargetFPS  int    `yaml:"target_fps"`
	Background string `yaml:"background"`
}

// PhysicsConfig holds rigid-body engine settings.
type PhysicsConfig struct {
	Engine     string  `yaml:"engine"`     // "chipmunk" or "ark"
	DT         float64 `yaml:"dt"`         // seconds per tick
	Gravity    float64 `yaml:"gravity"`    // downward acceleration, px/s²
	Iterations int     `yaml:"iterations"` // solver iterations (chipmunk only)
	GridCell   float64 `yaml:"grid_cell"`  // broad phase cell size (ark only)
}

// WaterConfig holds the particle fluid approximation parameters.
type WaterConfig struct {
	ParticleRadius     float64 `yaml:"particle_radius"`
	MaxParticles       int     `yaml:"max_particles"`
	EmissionRate       int     `yaml:"emission_rate"`        // particles per emission cycle
	EmissionIntervalMS int     `yaml:"emission_interval_ms"` // time between emission cycles
	ParticleLifespanMS int     `yaml:"particle_lifespan_ms"` // time before natural expiry
	EmissionY          float64 `yaml:"emission_y"`           // fixed emission height
	BandMin            float64 `yaml:"band_min"`             // emission band start, fraction of width
	BandMax            float64 `yaml:"band_max"`             // emission band end, fraction of width
	CohesionForce      float64 `yaml:"cohesion_force"`
	CohesionRange      float64 `yaml:"cohesion_range"` // multiple of particle radius
	DampingFactor      float64 `yaml:"damping_factor"` // horizontal velocity scale per tick
	Density            float64 `yaml:"density"`
	Friction           float64 `yaml:"friction"`
	AirFriction        float64 `yaml:"air_friction"`
	Restitution        float64 `yaml:"restitution"`
	Color              string  `yaml:"color"`
	Opacity            float64 `yaml:"opacity"`
}

// BoundaryConfig holds wall and ground parameters.
type BoundaryConfig struct {
	WallThickness float64 `yaml:"wall_thickness"`
	GroundHeight  float64 `yaml:"ground_height"`
	Friction      float64 `yaml:"friction"`
	BorderColor   string  `yaml:"border_color"`
	LockColor     string  `yaml:"lock_color"`
	LockOpacity   float64 `yaml:"lock_opacity"`
	GroundColor   string  `yaml:"ground_color"`
}

// ShapeConfig describes one spawnable shape kind.
type ShapeConfig struct {
	Size        float64 `yaml:"size"` // radius for circles/polygons, side for squares
	Restitution float64 `yaml:"restitution"`
	Density     float64 `yaml:"density"`
	Color       string  `yaml:"color"`
}

// ShapesConfig holds parameters for user-spawned shapes.
type ShapesConfig struct {
	Friction    float64     `yaml:"friction"`
	AirFriction float64     `yaml:"air_friction"`
	Circle      ShapeConfig `yaml:"circle"`
	Square      ShapeConfig `yaml:"square"`
	Triangle    ShapeConfig `yaml:"triangle"`
}

// SpawnerConfig holds hold-to-spawn burst parameters.
type SpawnerConfig struct {
	BurstIntervalMS int `yaml:"burst_interval_ms"`
	BurstCount      int `yaml:"burst_count"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT               time.Duration
	EmissionInterval time.Duration
	ParticleLifespan time.Duration
	BurstInterval    time.Duration
	ScreenW32        float32
	ScreenH32        float32

	BackgroundColor color.RGBA
	WaterColor      color.RGBA
	BorderColor     color.RGBA
	LockColor       color.RGBA
	GroundColor     color.RGBA
	CircleColor     color.RGBA
	SquareColor     color.RGBA
	TriangleColor   color.RGBA
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy suitable for per-run mutation.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Recompute validates the config and refreshes derived values after fields
// were changed in code.
func (c *Config) Recompute() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT))
	}
	switch c.Physics.Engine {
	case "chipmunk", "ark":
	default:
		errs = append(errs, fmt.Errorf("physics.engine must be chipmunk or ark, got %q", c.Physics.Engine))
	}
	w := c.Water
	if w.ParticleRadius <= 0 {
		errs = append(errs, fmt.Errorf("water.particle_radius must be positive, got %v", w.ParticleRadius))
	}
	if w.MaxParticles <= 0 {
		errs = append(errs, fmt.Errorf("water.max_particles must be positive, got %d", w.MaxParticles))
	}
	if w.EmissionRate <= 0 {
		errs = append(errs, fmt.Errorf("water.emission_rate must be positive, got %d", w.EmissionRate))
	}
	if w.EmissionIntervalMS <= 0 || w.ParticleLifespanMS <= 0 {
		errs = append(errs, errors.New("water emission interval and lifespan must be positive"))
	}
	if w.BandMin < 0 || w.BandMax > 1 || w.BandMin > w.BandMax {
		errs = append(errs, fmt.Errorf("water emission band [%v, %v] outside [0, 1]", w.BandMin, w.BandMax))
	}
	if c.Boundary.WallThickness <= 0 {
		errs = append(errs, fmt.Errorf("boundary.wall_thickness must be positive, got %v", c.Boundary.WallThickness))
	}
	shapes := []struct {
		name string
		sc   ShapeConfig
	}{{"circle", c.Shapes.Circle}, {"square", c.Shapes.Square}, {"triangle", c.Shapes.Triangle}}
	for _, s := range shapes {
		if s.sc.Size <= 0 || s.sc.Density <= 0 {
			errs = append(errs, fmt.Errorf("shapes.%s size and density must be positive", s.name))
		}
	}
	if c.Spawner.BurstIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("spawner.burst_interval_ms must be positive, got %d", c.Spawner.BurstIntervalMS))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.DT = time.Duration(c.Physics.DT * float64(time.Second))
	c.Derived.EmissionInterval = time.Duration(c.Water.EmissionIntervalMS) * time.Millisecond
	c.Derived.ParticleLifespan = time.Duration(c.Water.ParticleLifespanMS) * time.Millisecond
	c.Derived.BurstInterval = time.Duration(c.Spawner.BurstIntervalMS) * time.Millisecond
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	colors := []struct {
		src     string
		opacity float64
		dst     *color.RGBA
	}{
		{c.Screen.Background, 1, &c.Derived.BackgroundColor},
		{c.Water.Color, c.Water.Opacity, &c.Derived.WaterColor},
		{c.Boundary.BorderColor, 1, &c.Derived.BorderColor},
		{c.Boundary.LockColor, c.Boundary.LockOpacity, &c.Derived.LockColor},
		{c.Boundary.GroundColor, 1, &c.Derived.GroundColor},
		{c.Shapes.Circle.Color, 1, &c.Derived.CircleColor},
		{c.Shapes.Square.Color, 1, &c.Derived.SquareColor},
		{c.Shapes.Triangle.Color, 1, &c.Derived.TriangleColor},
	}
	for _, col := range colors {
		rgba, err := ParseHexColor(col.src, col.opacity)
		if err != nil {
			return err
		}
		*col.dst = rgba
	}
	return nil
}

// ParseHexColor parses "#RRGGBB" and applies opacity in [0, 1] as alpha.
func ParseHexColor(s string, opacity float64) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: uint8(opacity*255 + 0.5),
	}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
