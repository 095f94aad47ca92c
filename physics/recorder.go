package physics

// OpKind identifies a recorded world mutation.
type OpKind uint8

const (
	OpAdd OpKind = iota
	OpRemove
)

// Op is one recorded AddBodies or RemoveBodies call.
type Op struct {
	Kind   OpKind
	Bodies []*Body
}

// state is a body's live state inside a Recorder.
type state struct {
	x, y, vx, vy float64
}

// Recorder is an in-memory Engine that records every successful mutation.
// Setting Down makes every call fail with ErrEngineUnavailable, which
// simulates an engine that is not initialized. Step integrates position
// from velocity with no forces.
type Recorder struct {
	Down bool
	Ops  []Op

	// OnChange, if set, runs after every successful add or remove.
	OnChange func(r *Recorder)

	members membership
	states  map[*Body]*state
	calls   int
}

// NewRecorder creates a running recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		members: newMembership(),
		states:  make(map[*Body]*state),
	}
}

// Start brings the recorder up.
func (r *Recorder) Start() error {
	r.Down = false
	return nil
}

// Stop clears all bodies and takes the recorder down.
func (r *Recorder) Stop() {
	r.members.clear()
	r.states = make(map[*Body]*state)
	r.Down = true
}

// Ready reports !Down.
func (r *Recorder) Ready() bool {
	return !r.Down
}

// Len returns the number of bodies present.
func (r *Recorder) Len() int {
	return len(r.members.order)
}

// Calls returns the number of gateway calls received, successful or not.
func (r *Recorder) Calls() int {
	return r.calls
}

// Contains reports whether b is present.
func (r *Recorder) Contains(b *Body) bool {
	return r.members.has(b)
}

// Bodies returns the present bodies in insertion order.
func (r *Recorder) Bodies() []*Body {
	out := make([]*Body, len(r.members.order))
	copy(out, r.members.order)
	return out
}

// CountTag returns the number of present bodies with the given tag.
func (r *Recorder) CountTag(tag Tag) int {
	n := 0
	for _, b := range r.members.order {
		if b.Tag == tag {
			n++
		}
	}
	return n
}

// AddBodies records an add of the whole batch.
func (r *Recorder) AddBodies(bodies ...*Body) error {
	r.calls++
	if r.Down {
		return ErrEngineUnavailable
	}
	if err := r.members.checkAdd(bodies); err != nil {
		return err
	}
	for _, b := range bodies {
		r.members.add(b)
		r.states[b] = &state{x: b.X, y: b.Y, vx: b.VX, vy: b.VY}
	}
	r.record(OpAdd, bodies)
	return nil
}

// RemoveBodies records a remove of the whole batch.
func (r *Recorder) RemoveBodies(bodies ...*Body) error {
	r.calls++
	if r.Down {
		return ErrEngineUnavailable
	}
	if err := r.members.checkRemove(bodies); err != nil {
		return err
	}
	for _, b := range bodies {
		r.members.remove(b)
		delete(r.states, b)
	}
	r.record(OpRemove, bodies)
	return nil
}

func (r *Recorder) record(kind OpKind, bodies []*Body) {
	batch := make([]*Body, len(bodies))
	copy(batch, bodies)
	r.Ops = append(r.Ops, Op{Kind: kind, Bodies: batch})
	if r.OnChange != nil {
		r.OnChange(r)
	}
}

func (r *Recorder) lookup(b *Body) (*state, error) {
	r.calls++
	if r.Down {
		return nil, ErrEngineUnavailable
	}
	s, ok := r.states[b]
	if !ok {
		return nil, ErrBodyAbsent
	}
	return s, nil
}

// SetVelocity overwrites a body's velocity.
func (r *Recorder) SetVelocity(b *Body, vx, vy float64) error {
	s, err := r.lookup(b)
	if err != nil {
		return err
	}
	s.vx, s.vy = vx, vy
	return nil
}

// Position returns a body's position.
func (r *Recorder) Position(b *Body) (float64, float64, error) {
	s, err := r.lookup(b)
	if err != nil {
		return 0, 0, err
	}
	return s.x, s.y, nil
}

// Velocity returns a body's velocity.
func (r *Recorder) Velocity(b *Body) (float64, float64, error) {
	s, err := r.lookup(b)
	if err != nil {
		return 0, 0, err
	}
	return s.vx, s.vy, nil
}

// Place moves a present body, for arranging test scenes.
func (r *Recorder) Place(b *Body, x, y float64) {
	if s, ok := r.states[b]; ok {
		s.x, s.y = x, y
	}
}

// Step moves every body by its velocity.
func (r *Recorder) Step(dt float64) error {
	r.calls++
	if r.Down {
		return ErrEngineUnavailable
	}
	for _, b := range r.members.order {
		if b.Static {
			continue
		}
		s := r.states[b]
		s.x += s.vx * dt
		s.y += s.vy * dt
	}
	return nil
}

// EachBody visits present bodies in insertion order.
func (r *Recorder) EachBody(fn BodyVisitor) {
	if r.Down {
		return
	}
	for _, b := range r.members.order {
		s := r.states[b]
		fn(b, s.x, s.y, 0)
	}
}
