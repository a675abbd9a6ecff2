package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ingyamilmolinar/seqplayer/internal/ui/layout"
)

// Controls is the button bar under the frames.
type Controls struct {
	buttons []layout.Button
	debug   bool
	pressed layout.Action
}

func NewControls(debug bool) *Controls {
	return &Controls{debug: debug}
}

func (c *Controls) SetBounds(bar image.Rectangle) {
	c.buttons = layout.Controls(bar, c.debug)
}

// Press arms the button under p. It reports whether p hit one.
func (c *Controls) Press(p image.Point) bool {
	b, ok := layout.Hit(c.buttons, p)
	if !ok {
		return false
	}
	c.pressed = b.Action
	return true
}

// Pressed reports whether a button is armed.
func (c *Controls) Pressed() bool { return c.pressed != layout.ActionNone }

// Release disarms the pressed button and returns its action if the pointer
// was released over it.
func (c *Controls) Release(p image.Point, tap bool) layout.Action {
	armed := c.pressed
	c.pressed = layout.ActionNone
	if !tap {
		return layout.ActionNone
	}
	if b, ok := layout.Hit(c.buttons, p); ok && b.Action == armed {
		return armed
	}
	return layout.ActionNone
}

func (c *Controls) Draw(dst *ebiten.Image) {
	for _, b := range c.buttons {
		drawButton(dst, b.Rect, buttonColor(b.Action), colButtonBorder, b.Action == c.pressed)
		drawTextCentered(dst, b.Label, b.Rect.Min.Add(b.Rect.Size().Div(2)), colText)
	}
}

func buttonColor(a layout.Action) color.Color {
	switch a {
	case layout.ActionDone:
		return colButtonDone
	case layout.ActionSimulate:
		return colButtonDebug
	default:
		return colButton
	}
}
