package components

// Position represents a body's centre in scene coordinates (y grows downward).
type Position struct {
	X, Y float64
}

// Velocity represents a body's linear velocity in scene units per second.
type Velocity struct {
	X, Y float64
}
