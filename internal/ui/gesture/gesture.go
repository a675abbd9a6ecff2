// Package gesture folds per-tick pointer snapshots (mouse and touches) into
// begin/move/end events for a single active pointer.
package gesture

import "image"

// MouseID identifies the mouse among touch contacts.
const MouseID = -1

// Contact is one pointer held down during the current tick.
type Contact struct {
	ID int
	image.Point
}

type Kind int

const (
	Begin Kind = iota
	Move
	End
)

func (k Kind) String() string {
	switch k {
	case Begin:
		return "Begin"
	case Move:
		return "Move"
	case End:
		return "End"
	default:
		return "Unknown"
	}
}

type Event struct {
	Kind Kind
	image.Point
	// Tap is set on End when the pointer never left the slop radius.
	Tap bool
}

// Tracker follows the first pointer that goes down and ignores others until
// it is lifted.
type Tracker struct {
	Slop int

	active bool
	id     int
	origin image.Point
	last   image.Point
	moved  bool
}

func NewTracker(slop int) *Tracker { return &Tracker{Slop: slop} }

func (t *Tracker) Active() bool { return t.active }

// Update compares this tick's contacts with the tracked pointer and returns
// at most one event.
func (t *Tracker) Update(contacts []Contact) (Event, bool) {
	if !t.active {
		if len(contacts) == 0 {
			return Event{}, false
		}
		c := contacts[0]
		t.active = true
		t.id = c.ID
		t.origin, t.last = c.Point, c.Point
		t.moved = false
		return Event{Kind: Begin, Point: c.Point}, true
	}
	for _, c := range contacts {
		if c.ID != t.id {
			continue
		}
		if c.Point == t.last {
			return Event{}, false
		}
		t.last = c.Point
		if !t.moved && outside(c.Point.Sub(t.origin), t.Slop) {
			t.moved = true
		}
		return Event{Kind: Move, Point: c.Point}, true
	}
	t.active = false
	return Event{Kind: End, Point: t.last, Tap: !t.moved}, true
}

// Cancel drops the active pointer without an End event.
func (t *Tracker) Cancel() { t.active = false }

func outside(d image.Point, slop int) bool {
	return d.X*d.X+d.Y*d.Y > slop*slop
}
