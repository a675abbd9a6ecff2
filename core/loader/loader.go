// Package loader resolves a (style, word) pair to a variant and loads its
// frames asynchronously. Every deferred callback is tagged with the
// generation that issued it; callbacks from superseded loads are dropped.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ingyamilmolinar/seqplayer/core/ring"
	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

var ErrSequenceTimeout = errors.New("sequence load timed out")

// Request identifies one load attempt.
type Request struct {
	Style      string
	Word       string
	Variant    int
	Generation uint64
}

func (r Request) String() string {
	return fmt.Sprintf("%s/%s v%d #%d", r.Style, r.Word, r.Variant, r.Generation)
}

// Fetcher retrieves one frame. done may be called from any goroutine, at most
// once; the loader hops back onto its scheduler before touching state.
type Fetcher[H any] interface {
	Fetch(ctx context.Context, path string, done func(H, error))
}

// FetchFunc adapts a plain function.
type FetchFunc[H any] func(ctx context.Context, path string, done func(H, error))

func (f FetchFunc[H]) Fetch(ctx context.Context, path string, done func(H, error)) {
	f(ctx, path, done)
}

// Scheduler is the single logical thread the loader runs on.
type Scheduler interface {
	Post(fn func())
	After(d time.Duration, fn func()) (cancel func())
	Now() time.Time
}

type Params struct {
	Frames     int
	MinVisible time.Duration // shortest time the loading state stays up
	Watchdog   time.Duration // a load not complete by then fails
}

func DefaultParams() Params {
	return Params{
		Frames:     ring.Frames,
		MinVisible: 3 * time.Second,
		Watchdog:   30 * time.Second,
	}
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Summary describes a completed load.
type Summary struct {
	Frames  int
	Failed  int
	Elapsed time.Duration
}

type pendingLoad[H any] struct {
	req      Request
	frames   *FrameSet[H]
	loaded   int
	failed   int
	start    time.Time
	complete bool

	cancelWatchdog func()
	cancelReady    func()
	cancelFetch    context.CancelFunc
}

func (p *pendingLoad[H]) done() int { return p.loaded + p.failed }

// stop cancels every deferred operation of the load.
func (p *pendingLoad[H]) stop() {
	if p.cancelWatchdog != nil {
		p.cancelWatchdog()
	}
	if p.cancelReady != nil {
		p.cancelReady()
	}
	if p.cancelFetch != nil {
		p.cancelFetch()
	}
}

type Loader[H any] struct {
	p        Params
	fetcher  Fetcher[H]
	sched    Scheduler
	paths    PathTemplate
	variants VariantStrategy
	fallback H
	logger   *game_log.Logger

	gen       uint64
	latest    Request
	requested bool
	pending   *pendingLoad[H]
	current   *FrameSet[H]
	status    Status
	err       error
	loaded    bool

	observers []Observer
}

type Options[H any] struct {
	Params   Params
	Fetcher  Fetcher[H]
	Paths    PathTemplate
	Variants VariantStrategy
	Fallback H // stored in slots whose fetch failed
	Logger   *game_log.Logger
}

func New[H any](sched Scheduler, opts Options[H]) *Loader[H] {
	p := opts.Params
	if p.Frames <= 0 {
		p.Frames = ring.Frames
	}
	if p.Watchdog <= 0 {
		p.Watchdog = DefaultParams().Watchdog
	}
	if opts.Variants == nil {
		opts.Variants = FixedVariant(1)
	}
	if opts.Logger == nil {
		opts.Logger = game_log.Discard()
	}
	return &Loader[H]{
		p:        p,
		fetcher:  opts.Fetcher,
		sched:    sched,
		paths:    opts.Paths,
		variants: opts.Variants,
		fallback: opts.Fallback,
		logger:   opts.Logger,
	}
}

// Observe registers o for load events. Observers run on the scheduler.
func (l *Loader[H]) Observe(o Observer) { l.observers = append(l.observers, o) }

func (l *Loader[H]) Status() Status { return l.status }

// Err is the failure of the latest load, if any.
func (l *Loader[H]) Err() error { return l.err }

// AssetsLoaded reports that every frame callback of the latest load has
// arrived, whether or not the min-visible delay is still running.
func (l *Loader[H]) AssetsLoaded() bool { return l.loaded }

// Latest returns the most recent request, or false if none was made.
func (l *Loader[H]) Latest() (Request, bool) { return l.latest, l.requested }

// Current returns the published frame set, nil before the first ready.
func (l *Loader[H]) Current() *FrameSet[H] { return l.current }

// Progress returns completed and failed frame counts of the in-flight load.
func (l *Loader[H]) Progress() (done, failed, total int) {
	if l.pending == nil {
		return 0, 0, l.p.Frames
	}
	return l.pending.done(), l.pending.failed, l.p.Frames
}

// Load starts loading (style, word) and returns its generation. Any load in
// flight is abandoned.
func (l *Loader[H]) Load(style, word string) uint64 {
	l.gen++
	gen := l.gen
	if l.pending != nil {
		l.logger.Debugf("[LOADER] superseding %v", l.pending.req)
		l.pending.stop()
		l.pending = nil
	}

	variant, err := l.variants.Variant(style, word)
	if err != nil {
		l.logger.Warnf("[LOADER] variant history for %s/%s: %v", style, word, err)
	}
	if variant < 1 {
		variant = 1
	}
	req := Request{Style: style, Word: word, Variant: variant, Generation: gen}
	l.latest = req
	l.requested = true
	l.status = StatusLoading
	l.err = nil
	l.loaded = false

	ctx, cancel := context.WithCancel(context.Background())
	pl := &pendingLoad[H]{
		req:         req,
		frames:      newFrameSet[H](req, l.p.Frames),
		start:       l.sched.Now(),
		cancelFetch: cancel,
	}
	l.pending = pl
	pl.cancelWatchdog = l.sched.After(l.p.Watchdog, func() { l.onWatchdog(gen) })

	l.logger.Infof("[LOADER] loading %v", req)
	for _, o := range l.observers {
		o.LoadStarted(req)
	}

	for i := 0; i < l.p.Frames; i++ {
		idx := i
		path := l.paths.Path(style, word, variant, idx+1)
		l.fetcher.Fetch(ctx, path, func(h H, err error) {
			l.sched.Post(func() { l.onFrame(gen, idx, path, h, err) })
		})
	}
	return gen
}

func (l *Loader[H]) live(gen uint64) *pendingLoad[H] {
	if l.pending == nil || l.pending.req.Generation != gen {
		return nil
	}
	return l.pending
}

func (l *Loader[H]) onFrame(gen uint64, idx int, path string, h H, err error) {
	pl := l.live(gen)
	if pl == nil {
		l.logger.Debugf("[LOADER] dropping stale frame %d of generation %d", idx, gen)
		return
	}
	if idx < 0 || idx >= pl.frames.Len() || pl.frames.slots[idx].State != SlotEmpty {
		l.logger.Debugf("[LOADER] ignoring duplicate frame %d of %v", idx, pl.req)
		return
	}
	if err != nil {
		l.logger.Errorf("[LOADER] frame %s failed: %v", path, err)
		pl.frames.slots[idx] = Slot[H]{State: SlotFallback, Handle: l.fallback}
		pl.failed++
	} else {
		pl.frames.slots[idx] = Slot[H]{State: SlotLoaded, Handle: h}
		pl.loaded++
	}
	for _, o := range l.observers {
		o.LoadProgress(pl.req, pl.done(), pl.failed)
	}
	if pl.done() == l.p.Frames {
		l.onComplete(pl)
	}
}

func (l *Loader[H]) onComplete(pl *pendingLoad[H]) {
	pl.complete = true
	l.loaded = true
	if pl.failed > 0 {
		l.logger.Warnf("[LOADER] %v completed with %d/%d fallback frames", pl.req, pl.failed, l.p.Frames)
	}
	elapsed := l.sched.Now().Sub(pl.start)
	remaining := l.p.MinVisible - elapsed
	if remaining <= 0 {
		l.declareReady(pl.req.Generation)
		return
	}
	gen := pl.req.Generation
	l.logger.Debugf("[LOADER] %v complete after %s, holding for %s", pl.req, elapsed, remaining)
	pl.cancelReady = l.sched.After(remaining, func() { l.declareReady(gen) })
}

func (l *Loader[H]) declareReady(gen uint64) {
	pl := l.live(gen)
	if pl == nil {
		return
	}
	pl.cancelReady = nil
	pl.stop()
	l.pending = nil
	l.current = pl.frames
	l.status = StatusReady
	sum := Summary{
		Frames:  l.p.Frames,
		Failed:  pl.failed,
		Elapsed: l.sched.Now().Sub(pl.start),
	}
	l.logger.Infof("[LOADER] %v ready in %s (%d fallback)", pl.req, sum.Elapsed, sum.Failed)
	for _, o := range l.observers {
		o.LoadReady(pl.req, sum)
	}
}

func (l *Loader[H]) onWatchdog(gen uint64) {
	pl := l.live(gen)
	if pl == nil || pl.complete {
		return
	}
	pl.cancelWatchdog = nil
	pl.stop()
	l.pending = nil
	l.status = StatusFailed
	l.err = fmt.Errorf("%w: %v after %s (%d/%d frames)", ErrSequenceTimeout, pl.req, l.p.Watchdog, pl.done(), l.p.Frames)
	l.logger.Errorf("[LOADER] %v", l.err)
	for _, o := range l.observers {
		o.LoadFailed(pl.req, l.err)
	}
}
