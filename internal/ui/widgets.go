package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
)

/* ------------------------------------------------------------------
   cache 1×1 images per colour
   ------------------------------------------------------------------ */

var pixelCache = map[string]*ebiten.Image{}

func key(c color.Color) string {
	r, g, b, a := c.RGBA()
	return fmt.Sprintf("%d_%d_%d_%d", r, g, b, a)
}

func pixel(c color.Color) *ebiten.Image {
	k := key(c)
	if img, ok := pixelCache[k]; ok {
		return img
	}
	img := ebiten.NewImage(1, 1)
	img.Fill(c)
	pixelCache[k] = img
	return img
}

/* ------------------------------------------------------------------
   text
   ------------------------------------------------------------------ */

var face = text.NewGoXFace(basicfont.Face7x13)

const lineHeight = 16

// drawText writes s with its top-left corner at (x, y).
func drawText(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}

// drawTextCentered centres s on c.
func drawTextCentered(dst *ebiten.Image, s string, c image.Point, col color.Color) {
	w, h := text.Measure(s, face, lineHeight)
	drawText(dst, s, c.X-int(w/2), c.Y-int(h/2), col)
}

/* ------------------------------------------------------------------
   frame strip: one tick per frame, fallbacks marked, current lit
   ------------------------------------------------------------------ */

func drawFrameStrip[H any](dst *ebiten.Image, r image.Rectangle, fs *loader.FrameSet[H], current int) {
	n := fs.Len()
	if n == 0 || r.Dx() < n {
		return
	}
	w := float64(r.Dx()) / float64(n)
	op := &ebiten.DrawImageOptions{}
	for i := 0; i < n; i++ {
		col := colProgBG
		switch {
		case i == current:
			col = colHighlight
		case fs.Slot(i).State == loader.SlotFallback:
			col = colMissing
		}
		op.GeoM.Reset()
		op.GeoM.Scale(math.Max(1, w-2), float64(r.Dy()))
		op.GeoM.Translate(float64(r.Min.X)+float64(i)*w+1, float64(r.Min.Y))
		dst.DrawImage(pixel(col), op)
	}
}

// drawProgress fills r left to right by done/total, the failed share tinted.
func drawProgress(dst *ebiten.Image, r image.Rectangle, done, failed, total int) {
	drawRect(dst, r, colProgBG, true)
	if total <= 0 {
		return
	}
	ok := done - failed
	okW := r.Dx() * ok / total
	failW := r.Dx() * failed / total
	drawRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+okW, r.Max.Y), colProgress, true)
	drawRect(dst, image.Rect(r.Min.X+okW, r.Min.Y, r.Min.X+okW+failW, r.Max.Y), colMissing, true)
	drawRect(dst, r, colButtonBorder, false)
}

func spinnerDot(i, n int) (x, y float32) {
	a := 2 * math.Pi * float64(i) / float64(n)
	return float32(math.Cos(a)), float32(math.Sin(a))
}
