package ui

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ingyamilmolinar/seqplayer/internal/ui/gesture"
)

var (
	cursorPosition       = ebiten.CursorPosition
	isMouseButtonPressed = ebiten.IsMouseButtonPressed
	isKeyJustPressed     = inpututil.IsKeyJustPressed
	appendTouchIDs       = ebiten.AppendTouchIDs
	touchPosition        = ebiten.TouchPosition
	wheel                = ebiten.Wheel
)

// contacts collects every pointer held down this tick, mouse first.
func contacts(buf []gesture.Contact, touches []ebiten.TouchID) ([]gesture.Contact, []ebiten.TouchID) {
	buf = buf[:0]
	if isMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := cursorPosition()
		buf = append(buf, gesture.Contact{ID: gesture.MouseID, Point: image.Pt(x, y)})
	}
	touches = appendTouchIDs(touches[:0])
	for _, id := range touches {
		x, y := touchPosition(id)
		buf = append(buf, gesture.Contact{ID: int(id), Point: image.Pt(x, y)})
	}
	return buf, touches
}

// anyJustPressed reports whether one of keys went down this tick.
func anyJustPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if isKeyJustPressed(k) {
			return true
		}
	}
	return false
}
