// Package input turns raw pointer coordinates into frame deltas and a
// release velocity.
package input

import "math"

// Params configures how coordinates map onto frames.
type Params struct {
	Sensitivity float64 // pixels per frame
	Sign        float64 // +1: dragging towards larger coordinates advances
	MaxVelocity float64 // release clamp, frames per tick
	AutoSpeed   float64 // releases at or below this speed resume autoplay
}

// Sample is the outcome of a move event.
type Sample struct {
	Position  float64 // start position + frame delta, not normalized
	Direction int
	Velocity  float64
}

// Release is the outcome of the end of an interaction.
type Release struct {
	Velocity  float64
	Direction int
	Inertial  bool
}

type Tracker struct {
	p Params

	active        bool
	startCoord    float64
	startPosition float64
	lastCoord     float64
	velocity      float64
	direction     int
}

func NewTracker(p Params) *Tracker {
	if p.Sensitivity <= 0 {
		p.Sensitivity = 10
	}
	if p.Sign == 0 {
		p.Sign = 1
	}
	if p.MaxVelocity <= 0 {
		p.MaxVelocity = 3
	}
	return &Tracker{p: p, direction: 1}
}

// Start begins an interaction at coord with the ring currently at position.
func (t *Tracker) Start(coord, position float64) {
	t.active = true
	t.startCoord = coord
	t.lastCoord = coord
	t.startPosition = position
	t.velocity = 0
}

func (t *Tracker) Active() bool { return t.active }

// StartPosition and StartCoord describe the anchor of the current drag.
func (t *Tracker) StartPosition() float64 { return t.startPosition }
func (t *Tracker) StartCoord() float64    { return t.startCoord }

// SetDirection seeds the direction reported when a drag never moves.
func (t *Tracker) SetDirection(dir int) {
	if dir != 0 {
		t.direction = dir
	}
}

// Move reports the drag position for coord. Direction follows the total
// displacement; velocity follows the step since the previous move.
func (t *Tracker) Move(coord float64) Sample {
	total := coord - t.startCoord
	delta := t.p.Sign * total / t.p.Sensitivity
	if d := t.p.Sign * total; d != 0 {
		t.direction = sign(d)
	}
	t.velocity = t.p.Sign * (coord - t.lastCoord) / t.p.Sensitivity
	t.lastCoord = coord
	return Sample{
		Position:  t.startPosition + delta,
		Direction: t.direction,
		Velocity:  t.velocity,
	}
}

// End finishes the interaction.
func (t *Tracker) End() Release {
	t.active = false
	v := math.Max(-t.p.MaxVelocity, math.Min(t.p.MaxVelocity, t.velocity))
	if math.Abs(v) <= t.p.AutoSpeed {
		t.velocity = 0
		return Release{Direction: t.direction}
	}
	t.velocity = v
	return Release{Velocity: v, Direction: t.direction, Inertial: true}
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
