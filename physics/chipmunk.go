package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// ChipmunkOptions configures the chipmunk-backed engine.
type ChipmunkOptions struct {
	Gravity    float64 // downward acceleration, scene units/s²
	Iterations int
}

// native is the engine-side representation of a Body.
type native struct {
	body  *cp.Body
	shape *cp.Shape
}

// Chipmunk is an Engine backed by github.com/jakecoffman/cp. Native water
// bodies are cached per *Body so a recycled particle reuses its native body
// and shape.
type Chipmunk struct {
	opts    ChipmunkOptions
	space   *cp.Space
	natives map[*Body]*native
	members membership
}

// NewChipmunk creates an engine. It is unavailable until Start is called.
func NewChipmunk(opts ChipmunkOptions) *Chipmunk {
	if opts.Iterations <= 0 {
		opts.Iterations = 10
	}
	return &Chipmunk{
		opts:    opts,
		natives: make(map[*Body]*native),
		members: newMembership(),
	}
}

// Start creates the space.
func (c *Chipmunk) Start() error {
	if c.space != nil {
		return nil
	}
	space := cp.NewSpace()
	space.Iterations = uint(c.opts.Iterations)
	space.SetGravity(cp.Vector{X: 0, Y: c.opts.Gravity})
	c.space = space
	return nil
}

// Stop removes every body and drops the space.
func (c *Chipmunk) Stop() {
	if c.space == nil {
		return
	}
	for _, b := range c.members.order {
		n := c.natives[b]
		c.space.RemoveShape(n.shape)
		if !b.Static {
			c.space.RemoveBody(n.body)
		}
	}
	c.members.clear()
	c.natives = make(map[*Body]*native)
	c.space = nil
}

// Ready reports whether the space exists.
func (c *Chipmunk) Ready() bool {
	return c.space != nil
}

// Len returns the number of bodies in the space.
func (c *Chipmunk) Len() int {
	return len(c.members.order)
}

// AddBodies places each body at its X, Y with velocity VX, VY.
func (c *Chipmunk) AddBodies(bodies ...*Body) error {
	if c.space == nil {
		return ErrEngineUnavailable
	}
	if err := c.members.checkAdd(bodies); err != nil {
		return err
	}
	built := make(map[*Body]*native)
	for _, b := range bodies {
		if _, ok := c.natives[b]; ok {
			continue
		}
		n, err := c.build(b)
		if err != nil {
			return err
		}
		built[b] = n
	}
	for b, n := range built {
		c.natives[b] = n
	}

	for _, b := range bodies {
		n := c.natives[b]
		n.body.SetPosition(cp.Vector{X: b.X, Y: b.Y})
		if !b.Static {
			n.body.SetVelocity(b.VX, b.VY)
			n.body.SetAngle(0)
			n.body.SetAngularVelocity(0)
			c.space.AddBody(n.body)
		}
		c.space.AddShape(n.shape)
		c.members.add(b)
	}
	return nil
}

// build validates the body geometry and creates its native body and shape.
// Nothing is added to the space here.
func (c *Chipmunk) build(b *Body) (*native, error) {
	var body *cp.Body
	mass := b.Mass()
	if b.Static {
		body = cp.NewStaticBody()
	} else if mass <= 0 {
		return nil, fmt.Errorf("build %s body: non-positive mass %v", b.Kind, mass)
	}

	var shape *cp.Shape
	switch b.Kind {
	case ShapeCircle:
		if body == nil {
			body = cp.NewBody(mass, cp.MomentForCircle(mass, 0, b.Radius, cp.Vector{}))
		}
		shape = cp.NewCircle(body, b.Radius, cp.Vector{})
	case ShapeBox:
		if body == nil {
			body = cp.NewBody(mass, cp.MomentForBox(mass, b.Width, b.Height))
		}
		shape = cp.NewBox(body, b.Width, b.Height, 0)
	case ShapePolygon:
		local := b.LocalVertices()
		if len(local) < 3 {
			return nil, fmt.Errorf("build polygon body: %d sides", b.Sides)
		}
		verts := make([]cp.Vector, len(local))
		for i, v := range local {
			verts[i] = cp.Vector{X: v[0], Y: v[1]}
		}
		if body == nil {
			body = cp.NewBody(mass, cp.MomentForPoly(mass, len(verts), verts, cp.Vector{}, 0))
		}
		shape = cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0)
	default:
		return nil, fmt.Errorf("build body: unknown shape kind %d", b.Kind)
	}

	shape.SetElasticity(b.Material.Restitution)
	shape.SetFriction(b.Material.Friction)

	if air := b.Material.AirFriction; air > 0 && !b.Static {
		// Air friction is a per-body fraction of velocity lost per second
		// at 60 ticks, on top of the space's global damping.
		keep := math.Pow(1-air, 60)
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
			body.UpdateVelocity(gravity, damping*math.Pow(keep, dt), dt)
		})
	}
	return &native{body: body, shape: shape}, nil
}

// RemoveBodies takes bodies out of the space. Only water keeps its native
// body and shape, since pooled particles are the only bodies re-added.
func (c *Chipmunk) RemoveBodies(bodies ...*Body) error {
	if c.space == nil {
		return ErrEngineUnavailable
	}
	if err := c.members.checkRemove(bodies); err != nil {
		return err
	}
	for _, b := range bodies {
		n := c.natives[b]
		c.space.RemoveShape(n.shape)
		if !b.Static {
			c.space.RemoveBody(n.body)
		}
		c.members.remove(b)
		if b.Tag != TagWater {
			delete(c.natives, b)
		}
	}
	return nil
}

func (c *Chipmunk) lookup(b *Body) (*native, error) {
	if c.space == nil {
		return nil, ErrEngineUnavailable
	}
	if !c.members.has(b) {
		return nil, ErrBodyAbsent
	}
	return c.natives[b], nil
}

// SetVelocity overwrites a body's linear velocity.
func (c *Chipmunk) SetVelocity(b *Body, vx, vy float64) error {
	n, err := c.lookup(b)
	if err != nil {
		return err
	}
	n.body.SetVelocity(vx, vy)
	return nil
}

// Position returns a body's live centre.
func (c *Chipmunk) Position(b *Body) (float64, float64, error) {
	n, err := c.lookup(b)
	if err != nil {
		return 0, 0, err
	}
	p := n.body.Position()
	return p.X, p.Y, nil
}

// Velocity returns a body's live linear velocity.
func (c *Chipmunk) Velocity(b *Body) (float64, float64, error) {
	n, err := c.lookup(b)
	if err != nil {
		return 0, 0, err
	}
	v := n.body.Velocity()
	return v.X, v.Y, nil
}

// Step advances the space.
func (c *Chipmunk) Step(dt float64) error {
	if c.space == nil {
		return ErrEngineUnavailable
	}
	c.space.Step(dt)
	return nil
}

// EachBody visits bodies in insertion order.
func (c *Chipmunk) EachBody(fn BodyVisitor) {
	if c.space == nil {
		return
	}
	for _, b := range c.members.order {
		n := c.natives[b]
		p := n.body.Position()
		fn(b, p.X, p.Y, n.body.Angle())
	}
}
