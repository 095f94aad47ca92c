package physics

import (
	"image/color"
	"math"
)

// ShapeKind identifies a body's collision geometry.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	ShapePolygon
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeBox:
		return "box"
	case ShapePolygon:
		return "polygon"
	}
	return "unknown"
}

// Tag classifies bodies for rendering and telemetry.
type Tag uint8

const (
	TagShape Tag = iota
	TagWater
	TagWall
	TagGround
)

// Material holds the physical response parameters of a body.
type Material struct {
	Density     float64
	Friction    float64
	AirFriction float64
	Restitution float64
}

// Body describes a rigid body independently of any engine. Engines keep their
// native representation keyed by the *Body pointer, so a Body can be removed
// and added again (recycled) without losing identity.
//
// X, Y, VX, VY are the placement applied when the body is added. While a body
// is in a world its live state is read through World.Position/Velocity.
type Body struct {
	Kind   ShapeKind
	Radius float64 // circle radius, polygon circumradius
	Width  float64 // box only
	Height float64 // box only
	Sides  int     // polygon only
	Static bool

	X, Y   float64
	VX, VY float64

	Material Material
	Color    color.RGBA
	Tag      Tag
}

// NewCircle creates a dynamic circle body centred at (x, y).
func NewCircle(x, y, radius float64, mat Material) *Body {
	return &Body{Kind: ShapeCircle, Radius: radius, X: x, Y: y, Material: mat}
}

// NewBox creates a dynamic box body centred at (x, y).
func NewBox(x, y, w, h float64, mat Material) *Body {
	return &Body{Kind: ShapeBox, Width: w, Height: h, X: x, Y: y, Material: mat}
}

// NewStaticBox creates an immovable box centred at (x, y).
func NewStaticBox(x, y, w, h float64) *Body {
	return &Body{Kind: ShapeBox, Width: w, Height: h, X: x, Y: y, Static: true}
}

// NewPolygon creates a dynamic regular polygon body centred at (x, y).
func NewPolygon(x, y float64, sides int, radius float64, mat Material) *Body {
	return &Body{Kind: ShapePolygon, Sides: sides, Radius: radius, X: x, Y: y, Material: mat}
}

// BoundingRadius returns the radius of the smallest circle around the centre
// enclosing the shape.
func (b *Body) BoundingRadius() float64 {
	switch b.Kind {
	case ShapeBox:
		return math.Hypot(b.Width, b.Height) / 2
	default:
		return b.Radius
	}
}

// Area returns the shape's area.
func (b *Body) Area() float64 {
	switch b.Kind {
	case ShapeCircle:
		return math.Pi * b.Radius * b.Radius
	case ShapeBox:
		return b.Width * b.Height
	case ShapePolygon:
		if b.Sides < 3 {
			return 0
		}
		n := float64(b.Sides)
		return 0.5 * n * b.Radius * b.Radius * math.Sin(2*math.Pi/n)
	}
	return 0
}

// Mass returns density times area, or 0 for static bodies.
func (b *Body) Mass() float64 {
	if b.Static {
		return 0
	}
	return b.Material.Density * b.Area()
}

// LocalVertices returns the polygon's vertices relative to its centre,
// counter-clockwise in a y-down frame. Empty for non-polygons.
func (b *Body) LocalVertices() [][2]float64 {
	if b.Kind != ShapePolygon || b.Sides < 3 {
		return nil
	}
	theta := 2 * math.Pi / float64(b.Sides)
	offset := theta / 2
	verts := make([][2]float64, b.Sides)
	for i := range verts {
		a := theta*float64(i) + offset
		verts[i] = [2]float64{b.Radius * math.Cos(a), b.Radius * math.Sin(a)}
	}
	return verts
}
