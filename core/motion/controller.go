// Package motion owns the playback position and the mode machine that moves
// it every tick.
package motion

import (
	"math"
	"time"

	"github.com/ingyamilmolinar/seqplayer/core/input"
	"github.com/ingyamilmolinar/seqplayer/core/ring"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

// accEpsilon absorbs float drift when summing AutoSpeed steps up to N.
const accEpsilon = 1e-9

type Params struct {
	Frames        int
	AutoSpeed     float64 // frames per tick
	Friction      float64 // inertia decay per tick
	MaxVelocity   float64
	Sensitivity   float64 // pixels per frame while dragging
	DragSign      float64
	EaseFactor    float64 // fraction of the remaining distance per reset tick
	SnapEpsilon   float64
	PauseDuration time.Duration
}

func DefaultParams() Params {
	return Params{
		Frames:        ring.Frames,
		AutoSpeed:     0.2,
		Friction:      0.9,
		MaxVelocity:   3,
		Sensitivity:   10,
		DragSign:      1,
		EaseFactor:    0.1,
		SnapEpsilon:   0.5,
		PauseDuration: 1500 * time.Millisecond,
	}
}

type Controller struct {
	p       Params
	pos     ring.Position
	state   State
	tracker *input.Tracker
	now     func() time.Time
	logger  *game_log.Logger

	active    bool
	direction int // last known direction, used when autoplay restarts

	// OnTransition is called after every mode change.
	OnTransition func(from, to State)
}

func NewController(p Params, now func() time.Time, logger *game_log.Logger) *Controller {
	if p.Frames <= 0 {
		p.Frames = ring.Frames
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Controller{
		p:     p,
		pos:   ring.NewPosition(p.Frames),
		state: Manual{},
		tracker: input.NewTracker(input.Params{
			Sensitivity: p.Sensitivity,
			Sign:        p.DragSign,
			MaxVelocity: p.MaxVelocity,
			AutoSpeed:   p.AutoSpeed,
		}),
		now:       now,
		logger:    logger,
		direction: 1,
	}
}

func (c *Controller) State() State      { return c.state }
func (c *Controller) Position() float64 { return c.pos.Value() }
func (c *Controller) Frame() int        { return c.pos.Index() }
func (c *Controller) Direction() int    { return c.direction }
func (c *Controller) Active() bool      { return c.active }

func (c *Controller) setState(s State) {
	from := c.state
	c.state = s
	if from == s {
		return
	}
	c.logger.Debugf("[MOTION] %v -> %v at %.2f", from, s, c.pos.Value())
	if c.OnTransition != nil {
		c.OnTransition(from, s)
	}
}

// EnableAutoplay starts rotation of a freshly loaded sequence from frame 0.
// An ongoing drag keeps control.
func (c *Controller) EnableAutoplay() {
	c.active = true
	if _, dragging := c.state.(Dragging); dragging {
		return
	}
	c.pos.Set(0)
	c.setState(Auto{Direction: c.direction})
}

// Disable freezes autonomous motion until the next EnableAutoplay.
func (c *Controller) Disable() {
	c.active = false
}

// Play forces constant-speed rotation in dir. It never interrupts a drag.
func (c *Controller) Play(dir int) {
	if dir == 0 {
		return
	}
	dir = signInt(float64(dir))
	c.direction = dir
	c.tracker.SetDirection(dir)
	if _, dragging := c.state.(Dragging); dragging {
		return
	}
	c.setState(Auto{Direction: dir})
}

// Reset eases back to frame 0 and then holds. It never interrupts a drag.
func (c *Controller) Reset() {
	if _, dragging := c.state.(Dragging); dragging {
		return
	}
	c.setState(Resetting{})
}

// BeginDrag hands the position to the pointer at coord.
func (c *Controller) BeginDrag(coord float64) {
	start := c.pos.Value()
	c.tracker.SetDirection(c.direction)
	c.tracker.Start(coord, start)
	c.setState(Dragging{StartPosition: start, StartCoord: coord})
}

// DragTo moves the position with the pointer. Ignored outside a drag.
func (c *Controller) DragTo(coord float64) {
	if _, dragging := c.state.(Dragging); !dragging {
		return
	}
	s := c.tracker.Move(coord)
	c.pos.Set(s.Position)
	c.direction = s.Direction
}

// EndDrag releases the pointer, coasting or resuming autoplay.
func (c *Controller) EndDrag() {
	if _, dragging := c.state.(Dragging); !dragging {
		return
	}
	r := c.tracker.End()
	c.direction = r.Direction
	if r.Inertial {
		c.setState(Inertia{Velocity: r.Velocity, Direction: r.Direction})
		return
	}
	c.setState(Auto{Direction: r.Direction})
}

// Tick advances one frame of motion.
func (c *Controller) Tick() {
	if !c.active {
		return
	}
	switch s := c.state.(type) {
	case Dragging:
		// pointer-driven
	case Resetting:
		diff := ring.Shortest(0-c.pos.Value(), c.p.Frames)
		if math.Abs(diff) < c.p.SnapEpsilon {
			c.pos.Set(0)
			c.setState(Manual{})
			return
		}
		c.pos.Add(diff * c.p.EaseFactor)
	case Inertia:
		if math.Abs(s.Velocity) <= c.p.AutoSpeed {
			c.setState(Auto{Direction: s.Direction})
			return
		}
		c.pos.Add(s.Velocity)
		s.Velocity *= c.p.Friction
		if s.Velocity != 0 {
			s.Direction = signInt(s.Velocity)
		}
		c.direction = s.Direction
		c.state = s
	case Auto:
		c.pos.Add(c.p.AutoSpeed * float64(s.Direction))
		s.Accumulated += c.p.AutoSpeed
		if s.Accumulated >= float64(c.p.Frames)-accEpsilon {
			c.pos.Set(0)
			c.setState(PauseAtStart{Direction: s.Direction, Since: c.now()})
			return
		}
		c.state = s
	case PauseAtStart:
		if c.now().Sub(s.Since) >= c.p.PauseDuration {
			c.setState(Auto{Direction: s.Direction})
		}
	case Manual:
	}
}

func signInt(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
