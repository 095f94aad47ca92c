package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ToolbarHeight is the height in pixels of the button bar below the scene.
const ToolbarHeight = 48

// ButtonID identifies a toolbar button.
type ButtonID int

const (
	ButtonCircle ButtonID = iota
	ButtonSquare
	ButtonTriangle
	ButtonClear
	ButtonBorders
	ButtonLock
	ButtonWater
	ButtonPlacing
	buttonCount
)

// ControlsState is the playground state the toolbar reflects.
type ControlsState struct {
	Emitting bool
	Placing  bool
	Bordered bool
	Locked   bool
	Selected string // shape kind picked for click-to-place
}

// Button is one laid-out toolbar button.
type Button struct {
	ID     ButtonID
	Label  string
	Bounds rl.Rectangle
	Active bool
}

// ControlsInput is what the user did with the toolbar this frame.
type ControlsInput struct {
	Clicked []ButtonID // released over a button
	Held    []ButtonID // mouse down over a button
}

// Layout places the toolbar buttons in equal columns across a bar of the
// given width whose top edge is at y.
func Layout(x, y, width float32, s ControlsState) []Button {
	const gap = 6
	n := float32(buttonCount)
	w := (width - gap*(n+1)) / n
	h := float32(ToolbarHeight) - 2*gap

	buttons := make([]Button, 0, buttonCount)
	for id := range buttonCount {
		label, active := buttonFace(id, s)
		buttons = append(buttons, Button{
			ID:     id,
			Label:  label,
			Bounds: rl.Rectangle{X: x + gap + float32(id)*(w+gap), Y: y + gap, Width: w, Height: h},
			Active: active,
		})
	}
	return buttons
}

func buttonFace(id ButtonID, s ControlsState) (string, bool) {
	switch id {
	case ButtonCircle:
		return "Add Circles", s.Placing && s.Selected == "circle"
	case ButtonSquare:
		return "Add Squares", s.Placing && s.Selected == "square"
	case ButtonTriangle:
		return "Add Triangles", s.Placing && s.Selected == "triangle"
	case ButtonClear:
		return "Clear All", false
	case ButtonBorders:
		if s.Bordered {
			return "Open Borders", true
		}
		return "Close Borders", false
	case ButtonLock:
		if s.Locked {
			return "Unlock Borders", true
		}
		return "Lock Borders", false
	case ButtonWater:
		if s.Emitting {
			return "Stop Water", true
		}
		return "Start Water", false
	case ButtonPlacing:
		return "Click-to-Place", s.Placing
	}
	return "", false
}

// HeldAt returns the buttons under (mx, my) while the mouse is down.
func HeldAt(buttons []Button, mx, my float32, down bool) []ButtonID {
	if !down {
		return nil
	}
	var held []ButtonID
	for _, b := range buttons {
		r := b.Bounds
		if mx >= r.X && mx < r.X+r.Width && my >= r.Y && my < r.Y+r.Height {
			held = append(held, b.ID)
		}
	}
	return held
}

// ControlsPanel draws the toolbar with raygui buttons.
type ControlsPanel struct {
	renderer *Renderer
}

// NewControlsPanel creates a toolbar.
func NewControlsPanel() *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer()}
}

// Draw renders the toolbar at y across width and reports clicks and holds.
func (c *ControlsPanel) Draw(y, width float32, s ControlsState) ControlsInput {
	r := c.renderer
	r.DrawPanel(0, int32(y), int32(width), ToolbarHeight)

	buttons := Layout(0, y, width, s)
	var in ControlsInput
	for _, b := range buttons {
		if gui.Button(b.Bounds, b.Label) {
			in.Clicked = append(in.Clicked, b.ID)
		}
		if b.Active {
			rl.DrawRectangleLinesEx(b.Bounds, 2, r.Theme.ActiveOutline)
		}
	}
	mouse := rl.GetMousePosition()
	in.Held = HeldAt(buttons, mouse.X, mouse.Y, rl.IsMouseButtonDown(rl.MouseButtonLeft))
	return in
}
