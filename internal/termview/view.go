// Package termview renders a player in a terminal with half-block cells and
// maps keys and mouse drags onto it.
package termview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/internal/config"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
	"github.com/ingyamilmolinar/seqplayer/internal/player"
	"github.com/ingyamilmolinar/seqplayer/internal/ui/info"
	"github.com/ingyamilmolinar/seqplayer/internal/ui/layout"
)

const (
	headerRows = 3
	footerRows = 1
	// cellWidth converts cell columns into the pixel units drag
	// sensitivity is expressed in.
	cellWidth = 8
)

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSubtle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStrip  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleLit    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleMiss   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

type Options struct {
	Catalog *config.Catalog
	Debug   bool
	Logger  *game_log.Logger
}

// View owns the tick: Run steps the player between terminal events, so
// every player call happens on one goroutine.
type View struct {
	screen  tcell.Screen
	player  *player.Player[image.Image]
	catalog *config.Catalog
	panel   *info.Panel
	logger  *game_log.Logger
	debug   bool

	dragging bool
	sim      info.Cycle
}

// New wraps an initialised screen.
func New(screen tcell.Screen, p *player.Player[image.Image], opts Options) *View {
	if opts.Catalog == nil {
		opts.Catalog = config.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = game_log.Discard()
	}
	v := &View{
		screen:  screen,
		player:  p,
		catalog: opts.Catalog,
		panel:   info.NewPanel(opts.Catalog),
		logger:  opts.Logger,
		debug:   opts.Debug,
	}
	p.Observe(v.panel)
	p.OnFrame = func(idx int) {
		v.logger.Debugf("[TERM] frame %02d state=%v", idx+1, p.Motion())
	}
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	return v
}

// Run ticks the player and redraws at 60Hz until ctx ends or the user quits.
func (v *View) Run(ctx context.Context) error {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !v.HandleEvent(ev) {
				v.logger.Infof("[TERM] quit requested")
				return nil
			}
		case <-ticker.C:
			v.Step()
			v.Draw()
		}
	}
}

// Step advances the panel and the player by one tick.
func (v *View) Step() {
	v.panel.Tick()
	v.player.Tick()
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.player.Play(-1)
	case tcell.KeyRight:
		v.player.Play(1)
	case tcell.KeyEnter:
		v.player.Finish()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'h':
			v.player.Play(-1)
		case 'l':
			v.player.Play(1)
		case 'r':
			v.player.Reset()
		case 's':
			if v.debug {
				v.simulateNext()
			}
		}
	}
	return true
}

func (v *View) handleMouse(ev *tcell.EventMouse) {
	x, _ := ev.Position()
	coord := float64(x * cellWidth)
	pressed := ev.Buttons()&tcell.Button1 != 0
	switch {
	case pressed && !v.dragging:
		v.dragging = true
		v.player.BeginDrag(coord)
	case pressed:
		v.player.DragTo(coord)
	case v.dragging:
		v.dragging = false
		v.player.DragTo(coord)
		v.player.EndDrag()
	}
}

func (v *View) simulateNext() {
	style, word, ok := v.sim.Next(v.catalog.StyleIDs(), v.catalog.WordIDs())
	if !ok {
		return
	}
	v.player.Simulate(style, word)
}

/* ─────────────────────── draw ─────────────────────── */

func (v *View) Draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	stage := image.Rect(0, headerRows, w, h-footerRows)

	lines := v.panel.Lines()
	for i := 0; i < len(lines) && i < headerRows-1; i++ {
		v.print(0, i, w, lines[i], styleText)
	}
	v.print(0, headerRows-1, w, v.panel.Status(), styleSubtle)

	img, idx, ok := v.player.Frame()
	if ok && img != nil {
		v.drawImage(img, stage)
	}
	switch v.player.Status() {
	case loader.StatusLoading:
		done, _, total := v.player.Progress()
		v.printCentered(stage, fmt.Sprintf("Loading %d/%d", done, total), styleText)
	case loader.StatusFailed:
		v.print(0, stage.Max.Y-1, w, "Could not load sequence: "+errText(v.player.Err()), styleError)
	case loader.StatusIdle:
		v.printCentered(stage, "Waiting for content", styleSubtle)
	}

	footer := "←/→ play  r reset  enter done  q quit"
	if v.debug {
		footer = fmt.Sprintf("%02d %v  s simulate", idx+1, v.player.Motion())
	}
	x := v.print(0, h-1, w, footer+"  ", styleSubtle)
	if fs := v.player.Current(); fs != nil {
		v.drawStrip(x, h-1, w, fs, idx)
	}
	v.screen.Show()
}

// drawImage paints img into r with one cell per two vertical pixels.
func (v *View) drawImage(img image.Image, r image.Rectangle) {
	px := image.Rect(0, 0, r.Dx(), r.Dy()*2)
	src := img.Bounds()
	dst := layout.Fit(src.Size(), px)
	if dst.Empty() {
		return
	}
	for y := dst.Min.Y &^ 1; y < dst.Max.Y; y += 2 {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			top := sample(img, src, dst, x, y)
			bottom := sample(img, src, dst, x, y+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			v.screen.SetContent(r.Min.X+x, r.Min.Y+y/2, '▀', nil, style)
		}
	}
}

func sample(img image.Image, src, dst image.Rectangle, x, y int) tcell.Color {
	if !image.Pt(x, y).In(dst) {
		return tcell.ColorBlack
	}
	sx := src.Min.X + (x-dst.Min.X)*src.Dx()/dst.Dx()
	sy := src.Min.Y + (y-dst.Min.Y)*src.Dy()/dst.Dy()
	return toColor(img.At(sx, sy))
}

func toColor(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

func (v *View) drawStrip(x, y, w int, fs *loader.FrameSet[image.Image], current int) {
	for i := 0; i < fs.Len() && x < w; i++ {
		style := styleStrip
		switch {
		case i == current:
			style = styleLit
		case fs.Slot(i).State == loader.SlotFallback:
			style = styleMiss
		}
		v.screen.SetContent(x, y, '▮', nil, style)
		x++
	}
}

// print writes s from (x, y), clipped at w, and returns the column after it.
func (v *View) print(x, y, w int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= w {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x += max(1, runewidth.RuneWidth(r))
	}
	return x
}

func (v *View) printCentered(r image.Rectangle, s string, style tcell.Style) {
	n := runewidth.StringWidth(s)
	x := r.Min.X + max(0, (r.Dx()-n)/2)
	v.print(x, r.Min.Y+r.Dy()/2, r.Max.X, s, style)
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
