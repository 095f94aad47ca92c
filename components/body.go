package components

// Collider holds the collision shape and material of a body in the ark engine.
// Dynamic bodies collide as circles of Radius; static bodies as axis-aligned
// boxes of HalfW x HalfH.
type Collider struct {
	Radius       float64
	HalfW, HalfH float64
	Static       bool

	InvMass     float64 // 0 for static bodies
	Restitution float64
	Friction    float64
	AirFriction float64 // fraction of velocity lost per second
}

// Overlaps reports whether two dynamic colliders at the given centre distance touch.
func (c *Collider) Overlaps(other *Collider, dist float64) bool {
	return dist < c.Radius+other.Radius
}
