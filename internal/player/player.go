// Package player assembles the tick loop, loader, motion controller and host
// bridge for one frame handle type. Renderers drive it.
package player

import (
	"context"
	"time"

	"github.com/tidwall/sjson"

	"github.com/ingyamilmolinar/seqplayer/core/bridge"
	"github.com/ingyamilmolinar/seqplayer/core/engine"
	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/core/motion"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

type Options[H any] struct {
	Motion   motion.Params
	Loader   loader.Params
	Paths    loader.PathTemplate
	Variants loader.VariantStrategy
	Fetcher  loader.Fetcher[H]
	Fallback H

	Commands     bridge.Commands
	DefaultStyle string
	DefaultWord  string
	Host         bridge.Host

	// Now defaults to the wall clock.
	Now    func() time.Time
	Logger *game_log.Logger
}

// Player methods other than Receive, Post, Connected and Run must be called from the
// loop: from a renderer's update, or from work passed to Post.
type Player[H any] struct {
	loop   *engine.Loop
	loader *loader.Loader[H]
	motion *motion.Controller
	bridge *bridge.Bridge
	logger *game_log.Logger

	// OnFrame is called after a tick that changed the visible frame index.
	OnFrame   func(index int)
	lastFrame int
}

func New[H any](opts Options[H]) *Player[H] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = game_log.Discard()
	}
	loop := engine.NewWithClock(opts.Now, opts.Logger)
	ld := loader.New[H](loop, loader.Options[H]{
		Params:   opts.Loader,
		Fetcher:  opts.Fetcher,
		Paths:    opts.Paths,
		Variants: opts.Variants,
		Fallback: opts.Fallback,
		Logger:   opts.Logger,
	})
	mc := motion.NewController(opts.Motion, opts.Now, opts.Logger)
	br := bridge.New(opts.Host, ld, bridge.Options{
		Commands:     opts.Commands,
		DefaultStyle: opts.DefaultStyle,
		DefaultWord:  opts.DefaultWord,
		Now:          opts.Now,
		Logger:       opts.Logger,
	})
	p := &Player[H]{loop: loop, loader: ld, motion: mc, bridge: br, logger: opts.Logger, lastFrame: -1}
	ld.Observe(loader.ObserverFuncs{
		OnStarted: func(loader.Request) { mc.Disable() },
		OnReady:   func(loader.Request, loader.Summary) { mc.EnableAutoplay() },
		OnFailed:  func(loader.Request, error) { mc.Disable() },
	})
	loop.OnTick = func() {
		mc.Tick()
		p.notifyFrame()
	}
	mc.OnTransition = func(from, to motion.State) {
		opts.Logger.Debugf("[PLAYER] %v -> %v at %.2f", from, to, mc.Position())
	}
	return p
}

func (p *Player[H]) notifyFrame() {
	if p.OnFrame == nil || p.loader.Current() == nil {
		return
	}
	if idx := p.motion.Frame(); idx != p.lastFrame {
		p.lastFrame = idx
		p.OnFrame(idx)
	}
}

// Receive queues an inbound host message. Safe from any goroutine.
func (p *Player[H]) Receive(msg []byte) {
	buf := append([]byte(nil), msg...)
	p.loop.Post(func() { p.bridge.Receive(buf) })
}

// Post runs fn on the loop. Safe from any goroutine.
func (p *Player[H]) Post(fn func()) { p.loop.Post(fn) }

// Start announces readiness to the host.
func (p *Player[H]) Start() { p.loop.Post(p.bridge.Announce) }

// Connected retries messages the host could not take earlier. Safe from any
// goroutine; transports call it when a channel to the host comes up.
func (p *Player[H]) Connected() { p.loop.Post(p.bridge.Flush) }

// Tick runs one step: queued work, due timers, then motion.
func (p *Player[H]) Tick() { p.loop.Step() }

// Run ticks at the loop rate until ctx ends.
func (p *Player[H]) Run(ctx context.Context) error { return p.loop.Run(ctx) }

// Observe registers o for load events.
func (p *Player[H]) Observe(o loader.Observer) { p.loader.Observe(o) }

// Frame returns the handle at the current position. ok is false until a
// frame set is live.
func (p *Player[H]) Frame() (h H, index int, ok bool) {
	index = p.motion.Frame()
	fs := p.loader.Current()
	if fs == nil {
		return h, index, false
	}
	h, ok = fs.Frame(index)
	return h, index, ok
}

func (p *Player[H]) Status() loader.Status          { return p.loader.Status() }
func (p *Player[H]) Err() error                     { return p.loader.Err() }
func (p *Player[H]) Latest() (loader.Request, bool) { return p.loader.Latest() }
func (p *Player[H]) Motion() motion.State           { return p.motion.State() }
func (p *Player[H]) Position() float64              { return p.motion.Position() }
func (p *Player[H]) Closed() bool                   { return p.bridge.Closed() }
func (p *Player[H]) Waiting() bool                  { return p.bridge.Waiting() }
func (p *Player[H]) Commands() bridge.Commands      { return p.bridge.Commands() }

// Progress reports the in-flight load.
func (p *Player[H]) Progress() (done, failed, total int) { return p.loader.Progress() }

// Current returns the live frame set, nil before the first ready.
func (p *Player[H]) Current() *loader.FrameSet[H] { return p.loader.Current() }

func (p *Player[H]) BeginDrag(coord float64) { p.motion.BeginDrag(coord) }
func (p *Player[H]) DragTo(coord float64)    { p.motion.DragTo(coord) }
func (p *Player[H]) EndDrag()                { p.motion.EndDrag() }
func (p *Player[H]) Play(dir int)            { p.motion.Play(dir) }
func (p *Player[H]) Reset()                  { p.motion.Reset() }

// Finish reports user completion to the host with the frame the user
// stopped on.
func (p *Player[H]) Finish() {
	_, idx, _ := p.Frame()
	p.bridge.Finish(map[string]any{"frame": idx + 1})
}

// Simulate feeds a content command as if the host had sent it.
func (p *Player[H]) Simulate(style, word string) {
	msg := []byte(`{}`)
	msg, _ = sjson.SetBytes(msg, "cmd", p.bridge.Commands().Content)
	msg, _ = sjson.SetBytes(msg, "content.style", style)
	msg, _ = sjson.SetBytes(msg, "content.word", word)
	p.logger.Infof("[PLAYER] simulating %s", msg)
	p.bridge.Receive(msg)
}
