package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	w := cfg.Water
	if w.ParticleRadius != 8 || w.MaxParticles != 300 || w.EmissionRate != 5 {
		t.Errorf("water defaults = %+v", w)
	}
	if w.CohesionForce != 0.0001 || w.DampingFactor != 0.98 {
		t.Errorf("cohesion/damping = %v/%v, want 0.0001/0.98", w.CohesionForce, w.DampingFactor)
	}
	if cfg.Boundary.WallThickness != 20 {
		t.Errorf("wall thickness = %v, want 20", cfg.Boundary.WallThickness)
	}
	if cfg.Derived.EmissionInterval != 100*time.Millisecond {
		t.Errorf("emission interval = %v, want 100ms", cfg.Derived.EmissionInterval)
	}
	if cfg.Derived.ParticleLifespan != 8*time.Second {
		t.Errorf("lifespan = %v, want 8s", cfg.Derived.ParticleLifespan)
	}
	if cfg.Derived.BurstInterval != 50*time.Millisecond {
		t.Errorf("burst interval = %v, want 50ms", cfg.Derived.BurstInterval)
	}
	want := color.RGBA{R: 0x3B, G: 0x83, B: 0xF6, A: 204}
	if cfg.Derived.WaterColor != want {
		t.Errorf("water color = %v, want %v", cfg.Derived.WaterColor, want)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("water:\n  max_particles: 10\nphysics:\n  engine: ark\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Water.MaxParticles != 10 {
		t.Errorf("max_particles = %d, want 10", cfg.Water.MaxParticles)
	}
	if cfg.Water.EmissionRate != 5 {
		t.Errorf("emission_rate = %d, want default 5", cfg.Water.EmissionRate)
	}
	if cfg.Physics.Engine != "ark" {
		t.Errorf("engine = %q, want ark", cfg.Physics.Engine)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero max particles", "water:\n  max_particles: 0\n"},
		{"negative radius", "water:\n  particle_radius: -1\n"},
		{"bad engine", "physics:\n  engine: box2d\n"},
		{"inverted band", "water:\n  band_min: 0.9\n  band_max: 0.1\n"},
		{"bad color", "water:\n  color: blue\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped ErrNotExist", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		opacity float64
		want    color.RGBA
		wantErr bool
	}{
		{"#333333", 1, color.RGBA{0x33, 0x33, 0x33, 255}, false},
		{"969696", 0.2, color.RGBA{0x96, 0x96, 0x96, 51}, false},
		{"#FBBC05", 2, color.RGBA{0xFB, 0xBC, 0x05, 255}, false},
		{"#FFF", 1, color.RGBA{}, true},
		{"#GGGGGG", 1, color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in, tt.opacity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Water.EmissionRate = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Water.EmissionRate != 7 {
		t.Errorf("emission_rate = %d, want 7", back.Water.EmissionRate)
	}
}

func TestRecompute(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	cfg.Water.ParticleLifespanMS = 2500
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.ParticleLifespan != 2500*time.Millisecond {
		t.Errorf("ParticleLifespan = %v, want 2.5s", cfg.Derived.ParticleLifespan)
	}

	cfg.Water.EmissionRate = 0
	if err := cfg.Recompute(); err == nil {
		t.Error("Recompute accepted emission_rate 0")
	}
}
