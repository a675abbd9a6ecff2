package assets

import (
	"image"
	"image/color"
)

var (
	placeholderFill  = color.RGBA{0x2a, 0x2a, 0x30, 0xff}
	placeholderCross = color.RGBA{0x5c, 0x5c, 0x66, 0xff}
)

// Placeholder draws the frame shown for a slot whose fetch failed: a flat
// panel with a cross from corner to corner.
func Placeholder(w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, placeholderFill)
		}
	}
	steps := w
	if h > steps {
		steps = h
	}
	for i := 0; i < steps; i++ {
		x := i * (w - 1) / max(steps-1, 1)
		y := i * (h - 1) / max(steps-1, 1)
		img.SetRGBA(x, y, placeholderCross)
		img.SetRGBA(w-1-x, y, placeholderCross)
	}
	return img
}
