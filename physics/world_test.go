package physics

import (
	"errors"
	"math"
	"testing"
)

var water = Material{Density: 0.9, Friction: 0.1, AirFriction: 0.02, Restitution: 0.2}

func engines() []struct {
	name string
	new  func() Engine
} {
	return []struct {
		name string
		new  func() Engine
	}{
		{"chipmunk", func() Engine { return NewChipmunk(ChipmunkOptions{Gravity: 980, Iterations: 10}) }},
		{"ark", func() Engine { return NewArk(ArkOptions{Gravity: 980, Width: 800, Height: 800, GridCell: 32}) }},
		{"recorder", func() Engine {
			r := NewRecorder()
			r.Down = true
			return r
		}},
	}
}

func TestEngineUnavailableBeforeStart(t *testing.T) {
	for _, tc := range engines() {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.new()
			b := NewCircle(10, 10, 8, water)

			if err := e.AddBodies(b); !errors.Is(err, ErrEngineUnavailable) {
				t.Errorf("AddBodies err = %v, want ErrEngineUnavailable", err)
			}
			if _, _, err := e.Position(b); !errors.Is(err, ErrEngineUnavailable) {
				t.Errorf("Position err = %v, want ErrEngineUnavailable", err)
			}
			if err := e.Step(1.0 / 60); !errors.Is(err, ErrEngineUnavailable) {
				t.Errorf("Step err = %v, want ErrEngineUnavailable", err)
			}
			if e.Ready() {
				t.Error("Ready before Start")
			}
		})
	}
}

func TestEngineAddRemoveContract(t *testing.T) {
	for _, tc := range engines() {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.new()
			if err := e.Start(); err != nil {
				t.Fatal(err)
			}
			defer e.Stop()

			a := NewCircle(100, 50, 8, water)
			b := NewCircle(200, 50, 8, water)
			a.VX = 3

			if err := e.AddBodies(a, b); err != nil {
				t.Fatalf("AddBodies: %v", err)
			}
			if e.Len() != 2 {
				t.Fatalf("Len = %d, want 2", e.Len())
			}

			x, y, err := e.Position(a)
			if err != nil || x != 100 || y != 50 {
				t.Errorf("Position = (%v, %v, %v), want (100, 50, nil)", x, y, err)
			}
			vx, _, err := e.Velocity(a)
			if err != nil || vx != 3 {
				t.Errorf("Velocity x = %v (%v), want 3", vx, err)
			}

			if err := e.SetVelocity(b, -4, 2); err != nil {
				t.Fatalf("SetVelocity: %v", err)
			}
			vx, vy, _ := e.Velocity(b)
			if vx != -4 || vy != 2 {
				t.Errorf("Velocity = (%v, %v), want (-4, 2)", vx, vy)
			}

			// Duplicate add is rejected as a whole batch.
			c := NewCircle(300, 50, 8, water)
			if err := e.AddBodies(c, a); !errors.Is(err, ErrBodyPresent) {
				t.Errorf("AddBodies dup err = %v, want ErrBodyPresent", err)
			}
			if e.Len() != 2 {
				t.Errorf("Len after failed batch = %d, want 2", e.Len())
			}

			// Removing an absent body is rejected as a whole batch.
			if err := e.RemoveBodies(a, c); !errors.Is(err, ErrBodyAbsent) {
				t.Errorf("RemoveBodies absent err = %v, want ErrBodyAbsent", err)
			}
			if e.Len() != 2 {
				t.Errorf("Len after failed remove = %d, want 2", e.Len())
			}

			if err := e.RemoveBodies(a); err != nil {
				t.Fatalf("RemoveBodies: %v", err)
			}
			if _, _, err := e.Position(a); !errors.Is(err, ErrBodyAbsent) {
				t.Errorf("Position after remove err = %v, want ErrBodyAbsent", err)
			}

			// Re-adding the same Body recycles it at its new placement.
			a.X, a.Y, a.VX, a.VY = 400, 20, 0, 0
			if err := e.AddBodies(a); err != nil {
				t.Fatalf("re-add: %v", err)
			}
			x, y, _ = e.Position(a)
			if x != 400 || y != 20 {
				t.Errorf("recycled Position = (%v, %v), want (400, 20)", x, y)
			}

			var visited []*Body
			e.EachBody(func(body *Body, _, _, _ float64) { visited = append(visited, body) })
			if len(visited) != 2 || visited[0] != b || visited[1] != a {
				t.Errorf("EachBody order = %v, want [b a]", visited)
			}
		})
	}
}

func TestChipmunkCachesOnlyWater(t *testing.T) {
	c := NewChipmunk(ChipmunkOptions{Gravity: 980, Iterations: 10})
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()

	for i := range 100 {
		shapes := []*Body{
			NewCircle(float64(i), 50, 20, water),
			NewBox(float64(i), 100, 40, 40, water),
			NewPolygon(float64(i), 150, 3, 30, water),
			NewStaticBox(float64(i), 200, 10, 10),
		}
		if err := c.AddBodies(shapes...); err != nil {
			t.Fatalf("AddBodies: %v", err)
		}
		if err := c.RemoveBodies(shapes...); err != nil {
			t.Fatalf("RemoveBodies: %v", err)
		}
	}
	if c.Len() != 0 || len(c.natives) != 0 {
		t.Fatalf("after churn: %d bodies, %d cached natives, want 0 and 0", c.Len(), len(c.natives))
	}

	drop := NewCircle(10, 10, 8, water)
	drop.Tag = TagWater
	if err := c.AddBodies(drop); err != nil {
		t.Fatal(err)
	}
	n := c.natives[drop]
	if err := c.RemoveBodies(drop); err != nil {
		t.Fatal(err)
	}
	if err := c.AddBodies(drop); err != nil {
		t.Fatal(err)
	}
	if len(c.natives) != 1 || c.natives[drop] != n {
		t.Errorf("water native not reused: %d cached", len(c.natives))
	}
}

func TestEngineStopClears(t *testing.T) {
	for _, tc := range engines() {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.new()
			_ = e.Start()
			b := NewCircle(10, 10, 8, water)
			if err := e.AddBodies(b); err != nil {
				t.Fatal(err)
			}
			e.Stop()

			if e.Len() != 0 {
				t.Errorf("Len after Stop = %d, want 0", e.Len())
			}
			if err := e.RemoveBodies(b); !errors.Is(err, ErrEngineUnavailable) {
				t.Errorf("RemoveBodies after Stop err = %v, want ErrEngineUnavailable", err)
			}
		})
	}
}

func TestGravityPullsDown(t *testing.T) {
	for _, tc := range engines()[:2] {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.new()
			_ = e.Start()
			defer e.Stop()

			b := NewCircle(400, 100, 8, water)
			if err := e.AddBodies(b); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 30; i++ {
				if err := e.Step(1.0 / 60); err != nil {
					t.Fatal(err)
				}
			}
			_, y, _ := e.Position(b)
			if y <= 100 {
				t.Errorf("y = %v after 0.5s, want > 100", y)
			}
		})
	}
}

func TestStaticGroundHoldsBodies(t *testing.T) {
	for _, tc := range engines()[:2] {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.new()
			_ = e.Start()
			defer e.Stop()

			ground := NewStaticBox(400, 790, 800, 20)
			ground.Material = Material{Friction: 0.5, Restitution: 0}
			ball := NewCircle(400, 700, 8, water)
			if err := e.AddBodies(ground, ball); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 240; i++ {
				_ = e.Step(1.0 / 60)
			}
			_, y, _ := e.Position(ball)
			if y > 780 {
				t.Errorf("ball y = %v, fell through ground top at 780", y)
			}
			if y < 760 {
				t.Errorf("ball y = %v, did not settle on ground", y)
			}
		})
	}
}

func TestArkSeparatesOverlappingCircles(t *testing.T) {
	e := NewArk(ArkOptions{Gravity: 0, Width: 200, Height: 200, GridCell: 32})
	_ = e.Start()
	a := NewCircle(100, 100, 8, water)
	b := NewCircle(106, 100, 8, water)
	if err := e.AddBodies(a, b); err != nil {
		t.Fatal(err)
	}
	_ = e.Step(1.0 / 60)

	ax, _, _ := e.Position(a)
	bx, _, _ := e.Position(b)
	if d := bx - ax; math.Abs(d-16) > 1e-6 {
		t.Errorf("separation = %v, want 16", d)
	}
}

func TestBodyGeometry(t *testing.T) {
	tests := []struct {
		name     string
		body     *Body
		area     float64
		bounding float64
	}{
		{"circle", NewCircle(0, 0, 20, Material{}), math.Pi * 400, 20},
		{"box", NewBox(0, 0, 30, 40, Material{}), 1200, 25},
		{"square", NewStaticBox(0, 0, 40, 40), 1600, math.Sqrt(2) * 20},
		{"triangle", NewPolygon(0, 0, 3, 30, Material{}), 0.5 * 3 * 900 * math.Sin(2*math.Pi/3), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.body.Area(); math.Abs(got-tt.area) > 1e-9 {
				t.Errorf("Area = %v, want %v", got, tt.area)
			}
			if got := tt.body.BoundingRadius(); math.Abs(got-tt.bounding) > 1e-9 {
				t.Errorf("BoundingRadius = %v, want %v", got, tt.bounding)
			}
		})
	}

	if m := NewStaticBox(0, 0, 10, 10).Mass(); m != 0 {
		t.Errorf("static Mass = %v, want 0", m)
	}
}

func TestPolygonVertices(t *testing.T) {
	tri := NewPolygon(0, 0, 3, 30, Material{})
	verts := tri.LocalVertices()
	if len(verts) != 3 {
		t.Fatalf("len = %d, want 3", len(verts))
	}
	for i, v := range verts {
		if r := math.Hypot(v[0], v[1]); math.Abs(r-30) > 1e-9 {
			t.Errorf("vertex %d radius = %v, want 30", i, r)
		}
	}
	if NewCircle(0, 0, 1, Material{}).LocalVertices() != nil {
		t.Error("circle has vertices")
	}
}
