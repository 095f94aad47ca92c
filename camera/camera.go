// Package camera maps between window pixels and scene coordinates.
package camera

// Viewport fits the scene into the window at a uniform scale, centred,
// with letterbox bars on the longer axis.
type Viewport struct {
	// Scene dimensions in scene units
	SceneW, SceneH float32

	// Window dimensions in pixels
	ScreenW, ScreenH float32

	// Pixels per scene unit and the scene origin on screen
	Scale      float32
	OffX, OffY float32
}

// New creates a viewport showing a sceneW x sceneH scene in a
// screenW x screenH window.
func New(screenW, screenH, sceneW, sceneH float32) *Viewport {
	v := &Viewport{SceneW: sceneW, SceneH: sceneH}
	v.Resize(screenW, screenH)
	return v
}

// Resize updates the window size and refits the scene.
func (v *Viewport) Resize(screenW, screenH float32) {
	v.ScreenW, v.ScreenH = screenW, screenH
	v.fit()
}

// SetScene updates the scene size and refits it.
func (v *Viewport) SetScene(sceneW, sceneH float32) {
	v.SceneW, v.SceneH = sceneW, sceneH
	v.fit()
}

func (v *Viewport) fit() {
	if v.SceneW <= 0 || v.SceneH <= 0 {
		v.Scale, v.OffX, v.OffY = 1, 0, 0
		return
	}
	v.Scale = min(v.ScreenW/v.SceneW, v.ScreenH/v.SceneH)
	v.OffX = (v.ScreenW - v.SceneW*v.Scale) / 2
	v.OffY = (v.ScreenH - v.SceneH*v.Scale) / 2
}

// SceneToScreen converts scene coordinates to window pixels.
func (v *Viewport) SceneToScreen(x, y float32) (sx, sy float32) {
	return v.OffX + x*v.Scale, v.OffY + y*v.Scale
}

// ScreenToScene converts window pixels to scene coordinates.
func (v *Viewport) ScreenToScene(sx, sy float32) (x, y float32) {
	return (sx - v.OffX) / v.Scale, (sy - v.OffY) / v.Scale
}

// Contains reports whether a window pixel lies over the scene.
func (v *Viewport) Contains(sx, sy float32) bool {
	x, y := v.ScreenToScene(sx, sy)
	return x >= 0 && y >= 0 && x <= v.SceneW && y <= v.SceneH
}

// IsVisible returns true if a circle at scene (x, y) with the given radius
// overlaps the scene rectangle (conservative check for culling).
func (v *Viewport) IsVisible(x, y, radius float32) bool {
	return x+radius >= 0 && y+radius >= 0 && x-radius <= v.SceneW && y-radius <= v.SceneH
}
