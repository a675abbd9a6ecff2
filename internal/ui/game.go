// Package ui renders a player in an ebiten window and feeds it mouse, touch
// and keyboard input.
package ui

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/internal/config"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
	"github.com/ingyamilmolinar/seqplayer/internal/player"
	"github.com/ingyamilmolinar/seqplayer/internal/ui/gesture"
	"github.com/ingyamilmolinar/seqplayer/internal/ui/info"
	"github.com/ingyamilmolinar/seqplayer/internal/ui/layout"
)

const (
	tapSlop     = 6 // px a press may wander and still count as a tap
	stripHeight = 6
)

type Options struct {
	Catalog *config.Catalog
	Debug   bool
	// AllowQuit lets Esc and Q end the game. Off in the browser.
	AllowQuit bool
	// Done ends the game when closed.
	Done   <-chan struct{}
	Logger *game_log.Logger
}

type Game struct {
	/* subsystems */
	player   *player.Player[*ebiten.Image]
	catalog  *config.Catalog
	panel    *info.Panel
	controls *Controls
	drag     *gesture.Tracker
	logger   *game_log.Logger

	/* settings */
	debug     bool
	allowQuit bool
	done      <-chan struct{}

	/* layout */
	screen     layout.Screen
	winW, winH int

	/* per-tick state */
	frame    int64
	dragging bool
	sim      info.Cycle
	contacts []gesture.Contact
	touches  []ebiten.TouchID
}

func New(p *player.Player[*ebiten.Image], opts Options) *Game {
	if opts.Catalog == nil {
		opts.Catalog = config.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = game_log.Discard()
	}
	g := &Game{
		player:    p,
		catalog:   opts.Catalog,
		panel:     info.NewPanel(opts.Catalog),
		controls:  NewControls(opts.Debug),
		drag:      gesture.NewTracker(tapSlop),
		logger:    opts.Logger,
		debug:     opts.Debug,
		allowQuit: opts.AllowQuit,
		done:      opts.Done,
	}
	p.Observe(g.panel)
	p.OnFrame = func(idx int) {
		g.logger.Debugf("[GAME] frame %02d state=%v", idx+1, p.Motion())
	}
	g.initJS()
	g.logger.Infof("[GAME] created debug=%t", g.debug)
	return g
}

/* ─────────────────────── update ─────────────────────── */

func (g *Game) Update() error {
	g.frame++
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	if g.allowQuit && anyJustPressed(ebiten.KeyEscape, ebiten.KeyQ) {
		g.logger.Infof("[GAME] quit requested")
		return ebiten.Termination
	}
	g.handleKeys()
	g.handlePointer()
	g.panel.Tick()
	g.player.Tick()

	g.reportStateJS()
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case anyJustPressed(ebiten.KeyArrowLeft, ebiten.KeyA):
		g.apply(layout.ActionPrev)
	case anyJustPressed(ebiten.KeyArrowRight, ebiten.KeyD):
		g.apply(layout.ActionNext)
	case anyJustPressed(ebiten.KeyR, ebiten.KeyHome):
		g.apply(layout.ActionReset)
	case anyJustPressed(ebiten.KeyEnter, ebiten.KeyNumpadEnter):
		g.apply(layout.ActionDone)
	case g.debug && anyJustPressed(ebiten.KeyS):
		g.apply(layout.ActionSimulate)
	}
	if _, dy := wheel(); dy != 0 && !g.dragging {
		if dy > 0 {
			g.apply(layout.ActionPrev)
		} else {
			g.apply(layout.ActionNext)
		}
	}
}

func (g *Game) handlePointer() {
	g.contacts, g.touches = contacts(g.contacts, g.touches)
	ev, ok := g.drag.Update(g.contacts)
	if !ok {
		return
	}
	switch ev.Kind {
	case gesture.Begin:
		if g.controls.Press(ev.Point) {
			return
		}
		g.dragging = true
		g.player.BeginDrag(float64(ev.X))
	case gesture.Move:
		if g.dragging {
			g.player.DragTo(float64(ev.X))
		}
	case gesture.End:
		if g.dragging {
			g.dragging = false
			g.player.EndDrag()
			g.logger.Debugf("[GAME] drag released -> %v", g.player.Motion())
			return
		}
		g.apply(g.controls.Release(ev.Point, ev.Tap))
	}
}

func (g *Game) apply(a layout.Action) {
	if a == layout.ActionNone {
		return
	}
	g.logger.Debugf("[GAME] action %v", a)
	switch a {
	case layout.ActionPrev:
		g.player.Play(-1)
	case layout.ActionNext:
		g.player.Play(1)
	case layout.ActionReset:
		g.player.Reset()
	case layout.ActionDone:
		g.player.Finish()
	case layout.ActionSimulate:
		g.simulateNext()
	}
}

// simulateNext walks every style × word pair of the catalog.
func (g *Game) simulateNext() {
	style, word, ok := g.sim.Next(g.catalog.StyleIDs(), g.catalog.WordIDs())
	if !ok {
		g.logger.Warnf("[GAME] catalog has nothing to simulate")
		return
	}
	g.player.Simulate(style, word)
}

/* ─────────────────────── draw ─────────────────────── */

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBG)
	g.drawStage(screen)
	g.drawPanel(screen)
	drawRect(screen, g.screen.Bar, colBarBG, true)
	g.controls.Draw(screen)
	if g.debug {
		g.drawDebug(screen)
	}
}

func (g *Game) drawStage(screen *ebiten.Image) {
	stage := g.screen.Stage
	drawRect(screen, stage, colStageBG, true)

	img, idx, ok := g.player.Frame()
	if ok && img != nil {
		size := img.Bounds().Size()
		dst := layout.Fit(size, stage)
		s := layout.Scale(size, dst)
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(float64(dst.Min.X), float64(dst.Min.Y))
		screen.DrawImage(img, op)
		if fs := g.player.Current(); fs != nil {
			strip := image.Rect(stage.Min.X, stage.Max.Y-stripHeight, stage.Max.X, stage.Max.Y)
			drawFrameStrip(screen, strip, fs, idx)
		}
	}

	centre := stage.Min.Add(stage.Size().Div(2))
	switch g.player.Status() {
	case loader.StatusIdle:
		drawTextCentered(screen, "Waiting for content", centre, colSubtle)
	case loader.StatusLoading:
		drawRect(screen, stage, colDim, true)
		drawSpinner(screen, centre, 24, g.frame)
		done, failed, total := g.player.Progress()
		bar := image.Rect(centre.X-100, centre.Y+40, centre.X+100, centre.Y+48)
		drawProgress(screen, bar, done, failed, total)
		drawTextCentered(screen, fmt.Sprintf("%d / %d", done, total), centre.Add(image.Pt(0, 64)), colText)
	case loader.StatusFailed:
		band := image.Rect(stage.Min.X, stage.Max.Y-2*lineHeight-stripHeight, stage.Max.X, stage.Max.Y-stripHeight)
		drawRect(screen, band, colErrorBG, true)
		drawText(screen, "Could not load sequence: "+errText(g.player.Err()), band.Min.X+8, band.Min.Y+lineHeight/2, colError)
	}
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	r := g.screen.Panel
	drawRect(screen, r, colPanelBG, true)
	limit := max(1, (r.Dx()-16)/7)
	y := r.Min.Y + 4
	for _, line := range g.panel.Lines() {
		drawText(screen, clip(line, limit), r.Min.X+8, y, colText)
		y += lineHeight
	}
	drawText(screen, clip(g.panel.Status(), limit), r.Min.X+8, r.Max.Y-lineHeight, colSubtle)
}

func (g *Game) drawDebug(screen *ebiten.Image) {
	_, idx, _ := g.player.Frame()
	req, _ := g.player.Latest()
	msg := fmt.Sprintf("TPS %.0f  %v\nframe %02d pos %.2f %v\nwaiting=%t closed=%t",
		ebiten.ActualTPS(), req, idx+1, g.player.Position(), g.player.Motion(),
		g.player.Waiting(), g.player.Closed())
	ebitenutil.DebugPrintAt(screen, msg, g.screen.Stage.Min.X+4, g.screen.Stage.Min.Y+4)
}

/* ─────────────────────── layout ─────────────────────── */

func (g *Game) Layout(w, h int) (int, int) {
	if w != g.winW || h != g.winH {
		g.winW, g.winH = w, h
		g.screen = layout.Split(w, h)
		g.controls.SetBounds(g.screen.Bar)
		g.logger.Infof("[GAME] Layout: winW: %d, winH: %d, stage: %v", w, h, g.screen.Stage)
	}
	return w, h
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(0, n-1)]) + "…"
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
