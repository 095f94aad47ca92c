package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/fluidbox/physics"
)

var errAddRefused = errors.New("add refused")

// refusingWorld fails the next failAdds calls to AddBodies.
type refusingWorld struct {
	*physics.Recorder
	failAdds int
}

func (w *refusingWorld) AddBodies(bodies ...*physics.Body) error {
	if w.failAdds > 0 {
		w.failAdds--
		return errAddRefused
	}
	return w.Recorder.AddBodies(bodies...)
}

var testBoundaryConfig = BoundaryConfig{Thickness: 20, Friction: 0.1}

type rect struct{ x, y, w, h float64 }

func wallRects(walls []*physics.Body) []rect {
	out := make([]rect, len(walls))
	for i, b := range walls {
		out[i] = rect{b.X, b.Y, b.Width, b.Height}
	}
	return out
}

func TestBoundary_Geometry(t *testing.T) {
	tests := []struct {
		name string
		mode BoundaryMode
		want []rect
	}{
		{"open", BoundaryOpen, []rect{}},
		{"bordered", BoundaryBordered, []rect{
			{-10, 400, 20, 800},
			{810, 400, 20, 800},
			{400, -10, 800, 20},
		}},
		{"locked", BoundaryLocked, []rect{
			{-10, 400, 20, 800},
			{810, 400, 20, 800},
			{400, 810, 840, 20},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := physics.NewRecorder()
			b := NewBoundary(testBoundaryConfig, rec, 800, 800, nil)
			if err := b.Set(tt.mode); err != nil {
				t.Fatal(err)
			}

			got := wallRects(b.Walls())
			if len(got) != len(tt.want) {
				t.Fatalf("walls = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("wall %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
			if rec.CountTag(physics.TagWall) != len(tt.want) {
				t.Errorf("engine walls = %d, want %d", rec.CountTag(physics.TagWall), len(tt.want))
			}
			for _, w := range b.Walls() {
				if !w.Static {
					t.Error("wall is not static")
				}
			}
		})
	}
}

func TestBoundary_TransitionNeverOverlapsWallSets(t *testing.T) {
	rec := physics.NewRecorder()
	rec.OnChange = func(r *physics.Recorder) {
		if n := r.CountTag(physics.TagWall); n > 3 {
			t.Errorf("engine holds %d walls mid-transition", n)
		}
	}
	ev := newCountingEvents()
	b := NewBoundary(testBoundaryConfig, rec, 800, 800, ev)

	_ = b.Set(BoundaryBordered)
	if err := b.Set(BoundaryLocked); err != nil {
		t.Fatal(err)
	}

	if b.Mode() != BoundaryLocked {
		t.Errorf("Mode = %v, want locked", b.Mode())
	}
	ops := rec.Ops
	if len(ops) != 3 || ops[1].Kind != physics.OpRemove || ops[2].Kind != physics.OpAdd {
		t.Fatalf("ops = %+v, want add, remove, add", ops)
	}
	want := [][2]string{{"open", "bordered"}, {"bordered", "locked"}}
	if len(ev.transitions) != 2 || ev.transitions[0] != want[0] || ev.transitions[1] != want[1] {
		t.Errorf("transitions = %v, want %v", ev.transitions, want)
	}
}

func TestBoundary_Toggle(t *testing.T) {
	rec := physics.NewRecorder()
	b := NewBoundary(testBoundaryConfig, rec, 800, 800, nil)

	steps := []struct {
		toggle BoundaryMode
		want   BoundaryMode
		walls  int
	}{
		{BoundaryBordered, BoundaryBordered, 3},
		{BoundaryLocked, BoundaryLocked, 3},
		{BoundaryLocked, BoundaryOpen, 0},
		{BoundaryBordered, BoundaryBordered, 3},
		{BoundaryBordered, BoundaryOpen, 0},
		{BoundaryOpen, BoundaryOpen, 0},
	}

	for i, s := range steps {
		if err := b.Toggle(s.toggle); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if b.Mode() != s.want || rec.CountTag(physics.TagWall) != s.walls {
			t.Errorf("step %d: mode %v with %d walls, want %v with %d",
				i, b.Mode(), rec.CountTag(physics.TagWall), s.want, s.walls)
		}
	}
}

func TestBoundary_SetSameModeRebuilds(t *testing.T) {
	rec := physics.NewRecorder()
	b := NewBoundary(testBoundaryConfig, rec, 800, 800, nil)
	_ = b.Set(BoundaryBordered)
	before := b.Walls()

	if err := b.Set(BoundaryBordered); err != nil {
		t.Fatal(err)
	}
	after := b.Walls()
	if len(after) != 3 || rec.CountTag(physics.TagWall) != 3 {
		t.Fatalf("walls = %d, engine = %d, want 3", len(after), rec.CountTag(physics.TagWall))
	}
	for i := range after {
		if after[i] == before[i] {
			t.Errorf("wall %d was not rebuilt", i)
		}
	}
}

func TestBoundary_ResizeRebuilds(t *testing.T) {
	rec := physics.NewRecorder()
	b := NewBoundary(testBoundaryConfig, rec, 800, 800, nil)
	_ = b.Set(BoundaryLocked)

	if err := b.Resize(1000, 600); err != nil {
		t.Fatal(err)
	}

	want := []rect{
		{-10, 300, 20, 600},
		{1010, 300, 20, 600},
		{500, 610, 1040, 20},
	}
	got := wallRects(b.Walls())
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wall %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if rec.CountTag(physics.TagWall) != 3 {
		t.Errorf("engine walls = %d, want 3", rec.CountTag(physics.TagWall))
	}
}

// ---------- Failure semantics ----------

func TestBoundary_RemoveFailureLeavesStateUntouched(t *testing.T) {
	rec := physics.NewRecorder()
	b := NewBoundary(testBoundaryConfig, rec, 800, 800, nil)
	_ = b.Set(BoundaryBordered)
	walls := b.Walls()

	rec.Down = true
	err := b.Set(BoundaryLocked)
	if !errors.Is(err, physics.ErrEngineUnavailable) {
		t.Fatalf("err = %v, want ErrEngineUnavailable", err)
	}
	if b.Mode() != BoundaryBordered {
		t.Errorf("Mode = %v, want bordered", b.Mode())
	}
	for i, w := range b.Walls() {
		if w != walls[i] {
			t.Errorf("wall %d changed", i)
		}
	}
}

func TestBoundary_AddFailureRestoresPreviousWalls(t *testing.T) {
	w := &refusingWorld{Recorder: physics.NewRecorder()}
	b := NewBoundary(testBoundaryConfig, w, 800, 800, nil)
	_ = b.Set(BoundaryBordered)
	walls := b.Walls()

	w.failAdds = 1
	err := b.Set(BoundaryLocked)
	if !errors.Is(err, errAddRefused) {
		t.Fatalf("err = %v, want errAddRefused", err)
	}
	if b.Mode() != BoundaryBordered {
		t.Errorf("Mode = %v, want bordered", b.Mode())
	}
	for _, wall := range walls {
		if !w.Contains(wall) {
			t.Error("previous wall not restored")
		}
	}
	if w.CountTag(physics.TagWall) != 3 {
		t.Errorf("engine walls = %d, want 3", w.CountTag(physics.TagWall))
	}
}

func TestBoundary_AddFailureSettlesOpen(t *testing.T) {
	w := &refusingWorld{Recorder: physics.NewRecorder()}
	ev := newCountingEvents()
	b := NewBoundary(testBoundaryConfig, w, 800, 800, ev)
	_ = b.Set(BoundaryBordered)

	w.failAdds = 2
	err := b.Set(BoundaryLocked)
	if !errors.Is(err, errAddRefused) {
		t.Fatalf("err = %v, want errAddRefused", err)
	}
	if b.Mode() != BoundaryOpen || len(b.Walls()) != 0 {
		t.Errorf("mode %v with %d walls, want open with none", b.Mode(), len(b.Walls()))
	}
	if w.CountTag(physics.TagWall) != 0 {
		t.Errorf("engine walls = %d, want 0", w.CountTag(physics.TagWall))
	}
	if ev.failures["boundary"] != 1 {
		t.Errorf("failures = %d, want 1", ev.failures["boundary"])
	}
}

func TestParseBoundaryMode(t *testing.T) {
	tests := []struct {
		in      string
		want    BoundaryMode
		wantErr bool
	}{
		{"open", BoundaryOpen, false},
		{"", BoundaryOpen, false},
		{"Bordered", BoundaryBordered, false},
		{" locked ", BoundaryLocked, false},
		{"moat", BoundaryOpen, true},
	}
	for _, tt := range tests {
		got, err := ParseBoundaryMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBoundaryMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}
