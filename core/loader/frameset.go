package loader

import "fmt"

type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotLoaded
	SlotFallback
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotLoaded:
		return "loaded"
	case SlotFallback:
		return "fallback"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

type Slot[H any] struct {
	State  SlotState
	Handle H
}

// FrameSet holds one handle per frame of a sequence. The loader fills it
// while a load is in flight and never touches it again once published.
type FrameSet[H any] struct {
	Request Request
	slots   []Slot[H]
}

func newFrameSet[H any](req Request, n int) *FrameSet[H] {
	return &FrameSet[H]{Request: req, slots: make([]Slot[H], n)}
}

func (f *FrameSet[H]) Len() int { return len(f.slots) }

func (f *FrameSet[H]) Slot(i int) Slot[H] {
	if i < 0 || i >= len(f.slots) {
		return Slot[H]{}
	}
	return f.slots[i]
}

// Frame returns the handle for frame i, fallback handles included.
func (f *FrameSet[H]) Frame(i int) (H, bool) {
	s := f.Slot(i)
	return s.Handle, s.State != SlotEmpty
}

// Count returns how many slots are in state s.
func (f *FrameSet[H]) Count(s SlotState) int {
	n := 0
	for _, slot := range f.slots {
		if slot.State == s {
			n++
		}
	}
	return n
}
