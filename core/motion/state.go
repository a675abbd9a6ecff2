package motion

import (
	"fmt"
	"time"
)

// State is the active motion mode. Exactly one is active at a time and only
// Controller assigns it.
type State interface {
	fmt.Stringer
	motionState()
}

// Dragging: the pointer drives the position directly.
type Dragging struct {
	StartPosition float64
	StartCoord    float64
}

// Inertia: the ring coasts after a fast release.
type Inertia struct {
	Velocity  float64
	Direction int
}

// Auto: constant-speed rotation, counting distance towards one revolution.
type Auto struct {
	Direction   int
	Accumulated float64
}

// PauseAtStart: a full revolution finished; hold frame 0 for a while.
type PauseAtStart struct {
	Direction int
	Since     time.Time
}

// Resetting: ease back to frame 0, then hold.
type Resetting struct{}

// Manual: hold the current position.
type Manual struct{}

func (Dragging) motionState()     {}
func (Inertia) motionState()      {}
func (Auto) motionState()         {}
func (PauseAtStart) motionState() {}
func (Resetting) motionState()    {}
func (Manual) motionState()       {}

func (s Dragging) String() string {
	return fmt.Sprintf("Dragging{start=%.2f coord=%.1f}", s.StartPosition, s.StartCoord)
}
func (s Inertia) String() string {
	return fmt.Sprintf("Inertia{v=%.3f dir=%d}", s.Velocity, s.Direction)
}
func (s Auto) String() string {
	return fmt.Sprintf("Auto{dir=%d acc=%.2f}", s.Direction, s.Accumulated)
}
func (s PauseAtStart) String() string {
	return fmt.Sprintf("PauseAtStart{dir=%d}", s.Direction)
}
func (Resetting) String() string { return "Resetting" }
func (Manual) String() string    { return "Manual" }
