package game

import (
	"fmt"

	"github.com/pthm-cable/fluidbox/config"
	"github.com/pthm-cable/fluidbox/physics"
	"github.com/pthm-cable/fluidbox/systems"
)

// newEngine creates the named engine from the physics settings.
func newEngine(name string, cfg *config.Config) (physics.Engine, error) {
	switch name {
	case "chipmunk":
		return physics.NewChipmunk(physics.ChipmunkOptions{
			Gravity:    cfg.Physics.Gravity,
			Iterations: cfg.Physics.Iterations,
		}), nil
	case "ark":
		return physics.NewArk(physics.ArkOptions{
			Gravity:  cfg.Physics.Gravity,
			Width:    float64(cfg.Screen.Width),
			Height:   float64(cfg.Screen.Height),
			GridCell: cfg.Physics.GridCell,
		}), nil
	}
	return nil, fmt.Errorf("unknown engine %q (want chipmunk or ark)", name)
}

func engineName(e physics.Engine) string {
	switch e.(type) {
	case *physics.Chipmunk:
		return "chipmunk"
	case *physics.Ark:
		return "ark"
	case *physics.Recorder:
		return "recorder"
	}
	return fmt.Sprintf("%T", e)
}

func poolConfig(cfg *config.Config) systems.PoolConfig {
	w := cfg.Water
	return systems.PoolConfig{
		Radius: w.ParticleRadius,
		Material: physics.Material{
			Density:     w.Density,
			Friction:    w.Friction,
			AirFriction: w.AirFriction,
			Restitution: w.Restitution,
		},
		Color:    cfg.Derived.WaterColor,
		Lifespan: cfg.Derived.ParticleLifespan,
	}
}

func emitterConfig(cfg *config.Config) systems.EmitterConfig {
	w := cfg.Water
	return systems.EmitterConfig{
		Rate:     w.EmissionRate,
		Max:      w.MaxParticles,
		Interval: cfg.Derived.EmissionInterval,
		Lifespan: cfg.Derived.ParticleLifespan,
		Y:        w.EmissionY,
		BandMin:  w.BandMin,
		BandMax:  w.BandMax,
	}
}

func cohesionParams(cfg *config.Config) systems.CohesionParams {
	w := cfg.Water
	return systems.CohesionParams{
		Radius:  w.ParticleRadius,
		Force:   w.CohesionForce,
		Range:   w.CohesionRange,
		Damping: w.DampingFactor,
	}
}

func boundaryConfig(cfg *config.Config) systems.BoundaryConfig {
	return systems.BoundaryConfig{
		Thickness:   cfg.Boundary.WallThickness,
		Friction:    cfg.Boundary.Friction,
		BorderColor: cfg.Derived.BorderColor,
		LockColor:   cfg.Derived.LockColor,
	}
}

func spawnerConfig(cfg *config.Config) systems.SpawnerConfig {
	s := cfg.Shapes
	style := func(sc config.ShapeConfig, c config.DerivedConfig, kind systems.Shape) systems.ShapeStyle {
		st := systems.ShapeStyle{
			Size:        sc.Size,
			Restitution: sc.Restitution,
			Density:     sc.Density,
			Friction:    s.Friction,
			AirFriction: s.AirFriction,
		}
		switch kind {
		case systems.ShapeCircle:
			st.Color = c.CircleColor
		case systems.ShapeSquare:
			st.Color = c.SquareColor
		case systems.ShapeTriangle:
			st.Color = c.TriangleColor
		}
		return st
	}
	return systems.SpawnerConfig{
		Styles: map[systems.Shape]systems.ShapeStyle{
			systems.ShapeCircle:   style(s.Circle, cfg.Derived, systems.ShapeCircle),
			systems.ShapeSquare:   style(s.Square, cfg.Derived, systems.ShapeSquare),
			systems.ShapeTriangle: style(s.Triangle, cfg.Derived, systems.ShapeTriangle),
		},
		BurstInterval: cfg.Derived.BurstInterval,
		BurstCount:    cfg.Spawner.BurstCount,
	}
}
