// Package ui draws the toolbar and heads-up display over the scene.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	ActiveOutline rl.Color
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	FontSize      int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 20, G: 25, B: 30, A: 200},
		PanelBorder:   rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader: rl.Yellow,
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		ActiveOutline: rl.Color{R: 59, G: 131, B: 246, A: 255},
		Padding:       10,
		LineHeight:    16,
		LabelWidth:    70,
		FontSize:      12,
	}
}
