package motion

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController() (*Controller, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	c := NewController(DefaultParams(), clk.now, nil)
	c.EnableAutoplay()
	return c, clk
}

func TestAutoRevolutionEndsInPause(t *testing.T) {
	c, _ := newTestController()
	if _, ok := c.State().(Auto); !ok {
		t.Fatalf("state=%v want Auto", c.State())
	}
	for i := 0; i < 119; i++ {
		c.Tick()
		if _, ok := c.State().(Auto); !ok {
			t.Fatalf("left Auto early at tick %d: %v", i+1, c.State())
		}
	}
	c.Tick()
	p, ok := c.State().(PauseAtStart)
	if !ok {
		t.Fatalf("state=%v want PauseAtStart after 120 ticks", c.State())
	}
	if p.Direction != 1 || c.Position() != 0 {
		t.Fatalf("pause=%+v position=%v", p, c.Position())
	}
}

func TestPauseResumesAutoWithSameDirection(t *testing.T) {
	c, clk := newTestController()
	c.Play(-1)
	for i := 0; i < 120; i++ {
		c.Tick()
	}
	if _, ok := c.State().(PauseAtStart); !ok {
		t.Fatalf("state=%v want PauseAtStart", c.State())
	}
	clk.advance(1499 * time.Millisecond)
	c.Tick()
	if _, ok := c.State().(PauseAtStart); !ok {
		t.Fatalf("resumed too early: %v", c.State())
	}
	if c.Position() != 0 {
		t.Fatalf("position moved during pause: %v", c.Position())
	}
	clk.advance(time.Millisecond)
	c.Tick()
	a, ok := c.State().(Auto)
	if !ok || a.Direction != -1 || a.Accumulated != 0 {
		t.Fatalf("state=%v want Auto{dir=-1 acc=0}", c.State())
	}
}

func TestFastReleaseCoastsThenAutoplays(t *testing.T) {
	c, _ := newTestController()
	c.BeginDrag(0)
	c.DragTo(100) // raw velocity 10
	c.EndDrag()
	in, ok := c.State().(Inertia)
	if !ok || in.Velocity != 3 || in.Direction != 1 {
		t.Fatalf("state=%v want Inertia{v=3}", c.State())
	}
	ticks := 0
	for {
		if _, ok := c.State().(Inertia); !ok {
			break
		}
		prev := c.Position()
		c.Tick()
		ticks++
		if ticks > 100 {
			t.Fatalf("inertia never decayed")
		}
		if _, still := c.State().(Inertia); still && c.Position() == prev {
			t.Fatalf("inertia tick did not move")
		}
	}
	a, ok := c.State().(Auto)
	if !ok || a.Direction != 1 || a.Accumulated != 0 {
		t.Fatalf("state=%v want Auto{dir=1}", c.State())
	}
	// 3*0.9^k <= 0.2 first holds at k=26; the 27th tick hands over.
	if ticks != 27 {
		t.Fatalf("ticks=%d want 27", ticks)
	}
}

func TestSlowReleaseResumesAutoImmediately(t *testing.T) {
	c, _ := newTestController()
	c.BeginDrag(0)
	c.DragTo(1) // raw velocity 0.1
	c.EndDrag()
	if _, ok := c.State().(Auto); !ok {
		t.Fatalf("state=%v want Auto", c.State())
	}
}

func TestDragSetsNormalizedPosition(t *testing.T) {
	c, _ := newTestController()
	c.BeginDrag(50)
	c.DragTo(40) // -1 frame from 0
	if c.Position() != 23 || c.Frame() != 23 {
		t.Fatalf("position=%v frame=%d want 23", c.Position(), c.Frame())
	}
	if c.Direction() != -1 {
		t.Fatalf("direction=%d want -1", c.Direction())
	}
	before := c.Position()
	c.Tick()
	if c.Position() != before {
		t.Fatalf("tick moved a dragged ring")
	}
}

func TestPlayDoesNotInterruptDrag(t *testing.T) {
	c, _ := newTestController()
	c.BeginDrag(0)
	c.Play(-1)
	if _, ok := c.State().(Dragging); !ok {
		t.Fatalf("state=%v want Dragging", c.State())
	}
	c.Reset()
	if _, ok := c.State().(Dragging); !ok {
		t.Fatalf("reset interrupted drag: %v", c.State())
	}
}

func TestPlayOverridesInertia(t *testing.T) {
	c, _ := newTestController()
	c.BeginDrag(0)
	c.DragTo(100)
	c.EndDrag()
	c.Play(-1)
	a, ok := c.State().(Auto)
	if !ok || a.Direction != -1 {
		t.Fatalf("state=%v want Auto{dir=-1}", c.State())
	}
}

func TestResetEasesToZeroThenManual(t *testing.T) {
	c, _ := newTestController()
	for i := 0; i < 100; i++ { // position 20
		c.Tick()
	}
	if math.Abs(c.Position()-20) > 1e-9 {
		t.Fatalf("position=%v want 20", c.Position())
	}
	c.Reset()
	c.Tick()
	// shortest way from 20 to 0 is +4
	if math.Abs(c.Position()-20.4) > 1e-9 {
		t.Fatalf("position=%v want 20.4", c.Position())
	}
	for i := 0; i < 200; i++ {
		if _, ok := c.State().(Manual); ok {
			break
		}
		c.Tick()
	}
	if _, ok := c.State().(Manual); !ok {
		t.Fatalf("state=%v want Manual", c.State())
	}
	if c.Position() != 0 {
		t.Fatalf("position=%v want 0", c.Position())
	}
	c.Tick()
	if c.Position() != 0 {
		t.Fatalf("manual moved: %v", c.Position())
	}
}

func TestInactiveControllerHolds(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewController(DefaultParams(), clk.now, nil)
	c.Play(1)
	c.Tick()
	if c.Position() != 0 {
		t.Fatalf("inactive controller moved to %v", c.Position())
	}
	c.EnableAutoplay()
	c.Tick()
	if math.Abs(c.Position()-0.2) > 1e-9 {
		t.Fatalf("position=%v want 0.2", c.Position())
	}
	c.Disable()
	c.Tick()
	if math.Abs(c.Position()-0.2) > 1e-9 {
		t.Fatalf("disabled controller moved to %v", c.Position())
	}
}

func TestTransitionHook(t *testing.T) {
	c, _ := newTestController()
	var seen []string
	c.OnTransition = func(from, to State) { seen = append(seen, to.String()) }
	c.Reset()
	c.Play(1)
	if len(seen) != 2 || seen[0] != "Resetting" {
		t.Fatalf("transitions=%v", seen)
	}
}
