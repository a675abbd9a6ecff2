// Package layout computes screen regions and control hit boxes.
package layout

import "image"

const (
	PanelHeight = 56
	BarHeight   = 48
	buttonGap   = 8
)

// Screen splits the window into the info panel, the frame stage and the
// controls bar.
type Screen struct {
	Panel image.Rectangle
	Stage image.Rectangle
	Bar   image.Rectangle
}

func Split(w, h int) Screen {
	panel := min(PanelHeight, h/4)
	bar := min(BarHeight, h/4)
	return Screen{
		Panel: image.Rect(0, 0, w, panel),
		Stage: image.Rect(0, panel, w, h-bar),
		Bar:   image.Rect(0, h-bar, w, h),
	}
}

// Fit returns the largest rectangle with src's aspect ratio centred in dst.
func Fit(src image.Point, dst image.Rectangle) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 || dst.Empty() {
		return image.Rectangle{}
	}
	w, h := dst.Dx(), dst.Dy()
	if w*src.Y > h*src.X {
		w = h * src.X / src.Y
	} else {
		h = w * src.Y / src.X
	}
	origin := dst.Min.Add(image.Pt((dst.Dx()-w)/2, (dst.Dy()-h)/2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
}

// Scale is the factor Fit applied.
func Scale(src image.Point, fitted image.Rectangle) float64 {
	if src.X <= 0 {
		return 0
	}
	return float64(fitted.Dx()) / float64(src.X)
}

type Action int

const (
	ActionNone Action = iota
	ActionPrev
	ActionNext
	ActionReset
	ActionDone
	ActionSimulate
)

func (a Action) String() string {
	switch a {
	case ActionPrev:
		return "Prev"
	case ActionNext:
		return "Next"
	case ActionReset:
		return "Reset"
	case ActionDone:
		return "Done"
	case ActionSimulate:
		return "Simulate"
	default:
		return "None"
	}
}

type Button struct {
	Action Action
	Label  string
	Rect   image.Rectangle
}

// Controls lays the buttons out left to right across bar. The simulate
// button only exists in debug builds of the screen.
func Controls(bar image.Rectangle, debug bool) []Button {
	buttons := []Button{
		{Action: ActionPrev, Label: "<"},
		{Action: ActionReset, Label: "Reset"},
		{Action: ActionNext, Label: ">"},
		{Action: ActionDone, Label: "Done"},
	}
	if debug {
		buttons = append(buttons, Button{Action: ActionSimulate, Label: "Sim"})
	}
	n := len(buttons)
	inner := bar.Inset(buttonGap)
	if inner.Empty() {
		return buttons
	}
	w := (inner.Dx() - buttonGap*(n-1)) / n
	for i := range buttons {
		x := inner.Min.X + i*(w+buttonGap)
		buttons[i].Rect = image.Rect(x, inner.Min.Y, x+w, inner.Max.Y)
	}
	return buttons
}

// Hit returns the button under p.
func Hit(buttons []Button, p image.Point) (Button, bool) {
	for _, b := range buttons {
		if p.In(b.Rect) {
			return b, true
		}
	}
	return Button{}, false
}
