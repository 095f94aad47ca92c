// Package renderer draws the physics world with raylib.
package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidbox/camera"
	"github.com/pthm-cable/fluidbox/physics"
)

// BodyRenderer draws every body in the world with its own color.
type BodyRenderer struct {
	viewport *camera.Viewport

	// scratch buffer for polygon outlines
	verts []rl.Vector2
}

// NewBodyRenderer creates a renderer drawing through viewport.
func NewBodyRenderer(viewport *camera.Viewport) *BodyRenderer {
	return &BodyRenderer{viewport: viewport}
}

// Draw renders all bodies in insertion order, so water drawn after the
// ground and walls appears on top of them.
func (r *BodyRenderer) Draw(world physics.Engine) {
	world.EachBody(r.drawBody)
}

func (r *BodyRenderer) drawBody(b *physics.Body, x, y, angle float64) {
	v := r.viewport
	if !v.IsVisible(float32(x), float32(y), float32(b.BoundingRadius())) {
		return
	}
	col := toRL(b.Color)
	sx, sy := v.SceneToScreen(float32(x), float32(y))
	center := rl.Vector2{X: sx, Y: sy}

	switch b.Kind {
	case physics.ShapeCircle:
		radius := float32(b.Radius) * v.Scale
		rl.DrawCircleV(center, radius, col)
		if b.Tag == physics.TagShape {
			// Spoke shows rotation.
			end := rl.Vector2{
				X: sx + radius*float32(math.Cos(angle)),
				Y: sy + radius*float32(math.Sin(angle)),
			}
			rl.DrawLineV(center, end, shade(col))
		}

	case physics.ShapeBox:
		w := float32(b.Width) * v.Scale
		h := float32(b.Height) * v.Scale
		rl.DrawRectanglePro(
			rl.Rectangle{X: sx, Y: sy, Width: w, Height: h},
			rl.Vector2{X: w / 2, Y: h / 2},
			float32(angle*180/math.Pi),
			col,
		)

	case physics.ShapePolygon:
		theta := 2 * math.Pi / float64(b.Sides)
		rl.DrawPoly(center, int32(b.Sides), float32(b.Radius)*v.Scale, float32((angle+theta/2)*180/math.Pi), col)
		r.verts = ScreenVertices(r.verts[:0], b, x, y, angle, v)
		for i := range r.verts {
			rl.DrawLineV(r.verts[i], r.verts[(i+1)%len(r.verts)], shade(col))
		}
	}
}

// ScreenVertices appends the polygon's vertices, rotated by angle about
// scene (x, y), in window pixels.
func ScreenVertices(dst []rl.Vector2, b *physics.Body, x, y, angle float64, v *camera.Viewport) []rl.Vector2 {
	sin, cos := math.Sincos(angle)
	for _, p := range b.LocalVertices() {
		wx := x + p[0]*cos - p[1]*sin
		wy := y + p[0]*sin + p[1]*cos
		sx, sy := v.SceneToScreen(float32(wx), float32(wy))
		dst = append(dst, rl.Vector2{X: sx, Y: sy})
	}
	return dst
}

func toRL(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// shade darkens a color for outlines.
func shade(c rl.Color) rl.Color {
	return rl.Color{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}
