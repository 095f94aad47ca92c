package physics

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidbox/components"
)

// ArkOptions configures the ark-backed engine.
type ArkOptions struct {
	Gravity       float64 // downward acceleration, scene units/s²
	Width, Height float64 // scene size covered by the broad phase grid
	GridCell      float64
}

// Ark is a lightweight Engine storing bodies as entities in an ark ECS world.
// Dynamic bodies collide as circles of their bounding radius, static bodies
// as axis-aligned boxes. It needs no native library, which makes it the
// engine of choice for headless runs and parameter sweeps.
type Ark struct {
	opts ArkOptions

	world    *ecs.World
	mapper   *ecs.Map3[components.Position, components.Velocity, components.Collider]
	filter   *ecs.Filter3[components.Position, components.Velocity, components.Collider]
	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	colMap   *ecs.Map1[components.Collider]
	grid     *Grid
	entities map[*Body]ecs.Entity
	members  membership

	// scratch buffers reused across steps
	dynamic   []ecs.Entity
	statics   []ecs.Entity
	neighbors []Neighbor
	rank      map[ecs.Entity]int
}

// NewArk creates an engine. It is unavailable until Start is called.
func NewArk(opts ArkOptions) *Ark {
	return &Ark{
		opts:    opts,
		members: newMembership(),
	}
}

// Start creates the ECS world.
func (a *Ark) Start() error {
	if a.world != nil {
		return nil
	}
	world := ecs.NewWorld()
	a.world = world
	a.mapper = ecs.NewMap3[components.Position, components.Velocity, components.Collider](world)
	a.filter = ecs.NewFilter3[components.Position, components.Velocity, components.Collider](world)
	a.posMap = ecs.NewMap1[components.Position](world)
	a.velMap = ecs.NewMap1[components.Velocity](world)
	a.colMap = ecs.NewMap1[components.Collider](world)
	a.grid = NewGrid(a.opts.Width, a.opts.Height, a.opts.GridCell)
	a.entities = make(map[*Body]ecs.Entity)
	a.rank = make(map[ecs.Entity]int)
	return nil
}

// Stop drops the ECS world and every body in it.
func (a *Ark) Stop() {
	a.world = nil
	a.mapper = nil
	a.filter = nil
	a.posMap = nil
	a.velMap = nil
	a.colMap = nil
	a.entities = nil
	a.members.clear()
}

// Ready reports whether the world exists.
func (a *Ark) Ready() bool {
	return a.world != nil
}

// Len returns the number of bodies in the world.
func (a *Ark) Len() int {
	return len(a.members.order)
}

// Resize rebuilds the broad phase grid for a new scene size.
func (a *Ark) Resize(width, height float64) {
	a.opts.Width, a.opts.Height = width, height
	if a.world != nil {
		a.grid = NewGrid(width, height, a.opts.GridCell)
	}
}

// AddBodies creates one entity per body.
func (a *Ark) AddBodies(bodies ...*Body) error {
	if a.world == nil {
		return ErrEngineUnavailable
	}
	if err := a.members.checkAdd(bodies); err != nil {
		return err
	}
	for _, b := range bodies {
		pos := components.Position{X: b.X, Y: b.Y}
		vel := components.Velocity{X: b.VX, Y: b.VY}
		col := colliderFor(b)
		a.entities[b] = a.mapper.NewEntity(&pos, &vel, &col)
		a.members.add(b)
	}
	return nil
}

func colliderFor(b *Body) components.Collider {
	col := components.Collider{
		Radius:      b.BoundingRadius(),
		Static:      b.Static,
		Restitution: b.Material.Restitution,
		Friction:    b.Material.Friction,
		AirFriction: b.Material.AirFriction,
	}
	if b.Kind == ShapeBox {
		col.HalfW, col.HalfH = b.Width/2, b.Height/2
	} else {
		col.HalfW, col.HalfH = col.Radius, col.Radius
	}
	if m := b.Mass(); m > 0 {
		col.InvMass = 1 / m
	}
	return col
}

// RemoveBodies deletes the bodies' entities.
func (a *Ark) RemoveBodies(bodies ...*Body) error {
	if a.world == nil {
		return ErrEngineUnavailable
	}
	if err := a.members.checkRemove(bodies); err != nil {
		return err
	}
	for _, b := range bodies {
		a.world.RemoveEntity(a.entities[b])
		delete(a.entities, b)
		a.members.remove(b)
	}
	return nil
}

func (a *Ark) lookup(b *Body) (ecs.Entity, error) {
	if a.world == nil {
		return ecs.Entity{}, ErrEngineUnavailable
	}
	e, ok := a.entities[b]
	if !ok {
		return ecs.Entity{}, ErrBodyAbsent
	}
	return e, nil
}

// SetVelocity overwrites a body's linear velocity.
func (a *Ark) SetVelocity(b *Body, vx, vy float64) error {
	e, err := a.lookup(b)
	if err != nil {
		return err
	}
	vel := a.velMap.Get(e)
	vel.X, vel.Y = vx, vy
	return nil
}

// Position returns a body's live centre.
func (a *Ark) Position(b *Body) (float64, float64, error) {
	e, err := a.lookup(b)
	if err != nil {
		return 0, 0, err
	}
	pos := a.posMap.Get(e)
	return pos.X, pos.Y, nil
}

// Velocity returns a body's live linear velocity.
func (a *Ark) Velocity(b *Body) (float64, float64, error) {
	e, err := a.lookup(b)
	if err != nil {
		return 0, 0, err
	}
	vel := a.velMap.Get(e)
	return vel.X, vel.Y, nil
}

// EachBody visits bodies in insertion order. Rotation is not simulated.
func (a *Ark) EachBody(fn BodyVisitor) {
	if a.world == nil {
		return
	}
	for _, b := range a.members.order {
		pos := a.posMap.Get(a.entities[b])
		fn(b, pos.X, pos.Y, 0)
	}
}

// Step integrates gravity and air friction, then resolves dynamic-dynamic
// and dynamic-static contacts once.
func (a *Ark) Step(dt float64) error {
	if a.world == nil {
		return ErrEngineUnavailable
	}

	a.dynamic = a.dynamic[:0]
	a.statics = a.statics[:0]
	a.grid.Clear()
	clear(a.rank)

	query := a.filter.Query()
	for query.Next() {
		pos, vel, col := query.Get()
		if col.Static {
			a.statics = append(a.statics, query.Entity())
			continue
		}
		vel.Y += a.opts.Gravity * dt
		if col.AirFriction > 0 {
			keep := math.Pow(1-col.AirFriction, 60*dt)
			vel.X *= keep
			vel.Y *= keep
		}
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		e := query.Entity()
		a.rank[e] = len(a.dynamic)
		a.dynamic = append(a.dynamic, e)
		a.grid.Insert(e, pos.X, pos.Y)
	}

	for _, e := range a.dynamic {
		a.resolveDynamic(e)
	}
	for _, e := range a.dynamic {
		for _, s := range a.statics {
			a.resolveStatic(e, s)
		}
	}
	return nil
}

// resolveDynamic separates e from overlapping dynamic neighbours. Each pair is
// handled once, by the entity integrated first this step.
func (a *Ark) resolveDynamic(e ecs.Entity) {
	rank := a.rank[e]
	pos := a.posMap.Get(e)
	col := a.colMap.Get(e)
	a.neighbors = a.grid.QueryRadiusInto(a.neighbors[:0], pos.X, pos.Y, 2*col.Radius+a.opts.GridCell, e, a.posMap)

	for _, n := range a.neighbors {
		if a.rank[n.E] < rank {
			continue
		}
		other := a.colMap.Get(n.E)
		dist := math.Sqrt(n.DistSq)
		if !col.Overlaps(other, dist) || dist == 0 {
			continue
		}
		nx, ny := n.DX/dist, n.DY/dist
		overlap := col.Radius + other.Radius - dist

		total := col.InvMass + other.InvMass
		if total == 0 {
			continue
		}
		opos := a.posMap.Get(n.E)
		pos.X -= nx * overlap * col.InvMass / total
		pos.Y -= ny * overlap * col.InvMass / total
		opos.X += nx * overlap * other.InvMass / total
		opos.Y += ny * overlap * other.InvMass / total

		vel := a.velMap.Get(e)
		ovel := a.velMap.Get(n.E)
		rel := (ovel.X-vel.X)*nx + (ovel.Y-vel.Y)*ny
		if rel >= 0 {
			continue
		}
		rest := math.Min(col.Restitution, other.Restitution)
		j := -(1 + rest) * rel / total
		vel.X -= j * nx * col.InvMass
		vel.Y -= j * ny * col.InvMass
		ovel.X += j * nx * other.InvMass
		ovel.Y += j * ny * other.InvMass
	}
}

// resolveStatic pushes a dynamic circle out of a static box and reflects the
// normal velocity component.
func (a *Ark) resolveStatic(e, s ecs.Entity) {
	pos := a.posMap.Get(e)
	col := a.colMap.Get(e)
	spos := a.posMap.Get(s)
	scol := a.colMap.Get(s)

	cx := math.Max(spos.X-scol.HalfW, math.Min(pos.X, spos.X+scol.HalfW))
	cy := math.Max(spos.Y-scol.HalfH, math.Min(pos.Y, spos.Y+scol.HalfH))
	dx, dy := pos.X-cx, pos.Y-cy
	distSq := dx*dx + dy*dy
	if distSq >= col.Radius*col.Radius {
		return
	}

	var nx, ny, depth float64
	if distSq > 0 {
		dist := math.Sqrt(distSq)
		nx, ny = dx/dist, dy/dist
		depth = col.Radius - dist
	} else {
		// Centre inside the box: exit along the shallowest axis.
		left := pos.X - (spos.X - scol.HalfW)
		right := (spos.X + scol.HalfW) - pos.X
		top := pos.Y - (spos.Y - scol.HalfH)
		bottom := (spos.Y + scol.HalfH) - pos.Y
		depth = left
		nx, ny = -1, 0
		if right < depth {
			depth, nx, ny = right, 1, 0
		}
		if top < depth {
			depth, nx, ny = top, 0, -1
		}
		if bottom < depth {
			depth, nx, ny = bottom, 0, 1
		}
		depth += col.Radius
	}

	pos.X += nx * depth
	pos.Y += ny * depth

	vel := a.velMap.Get(e)
	vn := vel.X*nx + vel.Y*ny
	if vn >= 0 {
		return
	}
	restitution := math.Max(col.Restitution, scol.Restitution)
	vel.X -= (1 + restitution) * vn * nx
	vel.Y -= (1 + restitution) * vn * ny

	// Coulomb-style tangential friction.
	tx, ty := -ny, nx
	vt := vel.X*tx + vel.Y*ty
	friction := math.Sqrt(col.Friction * scol.Friction)
	maxT := friction * math.Abs(vn)
	if math.Abs(vt) <= maxT {
		vel.X -= vt * tx
		vel.Y -= vt * ty
	} else {
		vel.X -= math.Copysign(maxT, vt) * tx
		vel.Y -= math.Copysign(maxT, vt) * ty
	}
}
