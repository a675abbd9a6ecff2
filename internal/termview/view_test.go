package termview

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/core/motion"
	"github.com/ingyamilmolinar/seqplayer/internal/config"
	"github.com/ingyamilmolinar/seqplayer/internal/host"
	"github.com/ingyamilmolinar/seqplayer/internal/player"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var red = color.RGBA{255, 0, 0, 255}

func newTestView(t *testing.T) (*View, tcell.SimulationScreen, *fakeClock, *host.Recorder) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 20)

	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	rec := host.NewRecorder()
	frame := solid(red)
	p := player.New[image.Image](player.Options[image.Image]{
		Motion:   motion.DefaultParams(),
		Loader:   loader.DefaultParams(),
		Paths:    loader.PathTemplate{Base: "seq", Ext: "jpg"},
		Variants: loader.FixedVariant(1),
		Fetcher: loader.FetchFunc[image.Image](func(_ context.Context, _ string, done func(image.Image, error)) {
			done(frame, nil)
		}),
		Fallback:     solid(color.Gray{128}),
		DefaultStyle: "Style1",
		DefaultWord:  "Word1",
		Host:         rec,
		Now:          clk.now,
	})
	v := New(screen, p, Options{Catalog: &config.Catalog{DefaultPrompt: "prompt"}, Debug: true})
	return v, screen, clk, rec
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func (v *View) ready(clk *fakeClock) {
	v.player.Receive([]byte(`{"cmd":"py_btc_ai2_3_3","content":{"style":"S","word":"W"}}`))
	v.Step()
	v.Step()
	clk.advance(3 * time.Second)
	v.Step()
}

func TestDrawsFrameWithHalfBlocks(t *testing.T) {
	v, screen, clk, _ := newTestView(t)
	v.Draw()
	if !strings.Contains(row(screen, 11), "Waiting for content") {
		t.Fatalf("idle row=%q", row(screen, 11))
	}
	v.ready(clk)
	if v.player.Status() != loader.StatusReady {
		t.Fatalf("status=%v", v.player.Status())
	}
	v.Draw()
	// The stage is 40×16 cells, 40×32 pixels; a square frame is centred.
	r, _, style, _ := screen.GetContent(20, 10)
	if r != '▀' {
		t.Fatalf("cell=%q want half block", r)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(255, 0, 0) {
		t.Fatalf("fg=%v bg=%v want red", fg, bg)
	}
	if r, _, _, _ := screen.GetContent(0, 10); r == '▀' {
		t.Fatalf("frame should be pillarboxed")
	}
	if !strings.Contains(row(screen, 2), "Ready") {
		t.Fatalf("status row=%q", row(screen, 2))
	}
}

func TestKeysDrivePlayer(t *testing.T) {
	v, _, clk, rec := newTestView(t)
	v.ready(clk)
	v.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if m, ok := v.player.Motion().(motion.Auto); !ok || m.Direction != -1 {
		t.Fatalf("motion=%v want Auto(-1)", v.player.Motion())
	}
	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if _, ok := v.player.Motion().(motion.Resetting); !ok {
		t.Fatalf("motion=%v want Resetting", v.player.Motion())
	}
	v.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if n := len(rec.Sent()); n != 1 {
		t.Fatalf("sent=%d want one result", n)
	}
	if v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("q should quit")
	}
	if v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatalf("Esc should quit")
	}
}

func TestMouseDrag(t *testing.T) {
	v, _, clk, _ := newTestView(t)
	v.ready(clk)
	v.HandleEvent(tcell.NewEventMouse(10, 10, tcell.Button1, tcell.ModNone))
	if _, ok := v.player.Motion().(motion.Dragging); !ok {
		t.Fatalf("motion=%v want Dragging", v.player.Motion())
	}
	// Five cells at eight pixels each and ten pixels per frame, on top of
	// the autoplay step taken when the sequence became ready.
	v.HandleEvent(tcell.NewEventMouse(15, 10, tcell.Button1, tcell.ModNone))
	if p := v.player.Position(); p < 4 || p > 4.3 {
		t.Fatalf("position=%v want about 4", p)
	}
	v.HandleEvent(tcell.NewEventMouse(15, 10, tcell.ButtonNone, tcell.ModNone))
	if _, ok := v.player.Motion().(motion.Dragging); ok {
		t.Fatalf("still dragging after release")
	}
}

func TestDebugSimulate(t *testing.T) {
	v, _, _, _ := newTestView(t)
	v.catalog = config.DefaultCatalog()
	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone))
	req, ok := v.player.Latest()
	styles, words := v.catalog.StyleIDs(), v.catalog.WordIDs()
	if !ok || req.Style != styles[0] || req.Word != words[0] {
		t.Fatalf("latest=%v ok=%v", req, ok)
	}
}
