package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawRect draws a rectangle. It is defined as a variable so alternative
// backends can capture draw calls.
var drawRect = func(dst *ebiten.Image, r image.Rectangle, c color.Color, filled bool) {
	if filled {
		vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
	} else {
		vector.StrokeRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 1, c, false)
	}
}

// drawButton renders a filled rectangle with a border, darkened while pressed.
var drawButton = func(dst *ebiten.Image, r image.Rectangle, fill, border color.Color, pressed bool) {
	fc := fill
	if pressed {
		if c, ok := fill.(color.RGBA); ok {
			fc = color.RGBA{c.R / 2, c.G / 2, c.B / 2, c.A}
		}
	}
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), fc, false)
	vector.StrokeRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 1, border, false)
}

// drawSpinner draws eight dots around c, the brightest one advancing with
// tick.
func drawSpinner(dst *ebiten.Image, c image.Point, radius float32, tick int64) {
	const dots = 8
	lead := int(tick/6) % dots
	for i := 0; i < dots; i++ {
		x, y := spinnerDot(i, dots)
		a := uint8(60 + 195*((i-lead+dots)%dots)/(dots-1))
		col := color.NRGBA{colSpinner.R, colSpinner.G, colSpinner.B, a}
		vector.DrawFilledCircle(dst, float32(c.X)+x*radius, float32(c.Y)+y*radius, radius/5, col, true)
	}
}
