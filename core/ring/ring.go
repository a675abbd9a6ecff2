// Package ring models a continuous playback position on a ring of N frames.
package ring

import "math"

// Frames is the default sequence length.
const Frames = 24

// Normalize maps v into [0, n).
func Normalize(v float64, n int) float64 {
	size := float64(n)
	p := math.Mod(math.Mod(v, size)+size, size)
	// Mod of a tiny negative value plus size can round up to size itself.
	if p >= size {
		p = 0
	}
	return p
}

// Index returns the discrete frame for a position.
func Index(p float64, n int) int {
	i := int(math.Floor(Normalize(p, n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// Shortest wraps a delta into (-n/2, n/2] so it takes the short way round.
func Shortest(delta float64, n int) float64 {
	d := Normalize(delta, n)
	if d > float64(n)/2 {
		d -= float64(n)
	}
	return d
}

// Position is a ring position that is only ever stored normalized.
type Position struct {
	v float64
	n int
}

func NewPosition(n int) Position {
	if n <= 0 {
		n = Frames
	}
	return Position{n: n}
}

func (p *Position) Set(v float64) { p.v = Normalize(v, p.n) }
func (p *Position) Add(d float64) { p.Set(p.v + d) }
func (p Position) Value() float64 { return p.v }
func (p Position) Index() int     { return Index(p.v, p.n) }
func (p Position) Frames() int    { return p.n }
