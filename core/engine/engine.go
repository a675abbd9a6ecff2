package engine

import (
	"context"
	"sync"
	"time"

	game_log "github.com/ingyamilmolinar/seqplayer/internal/log"
)

const tickInterval = 16 * time.Millisecond

// Loop is the single logical thread of the player. Work from other
// goroutines is posted to its mailbox and timers fire inside Step, so
// everything that mutates player state runs from Step.
type Loop struct {
	now    func() time.Time
	timers *Timers
	logger *game_log.Logger

	mu      sync.Mutex
	mailbox []func()

	// OnTick runs at the end of every Step, after posted work and timers.
	OnTick func()

	ticks uint64
}

// New creates a loop on the wall clock.
func New(logger *game_log.Logger) *Loop {
	return NewWithClock(time.Now, logger)
}

// NewWithClock creates a loop whose timers read now.
func NewWithClock(now func() time.Time, logger *game_log.Logger) *Loop {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Loop{
		now:    now,
		timers: NewTimers(),
		logger: logger,
	}
}

// Post queues fn for the next Step. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.mailbox = append(l.mailbox, fn)
	l.mu.Unlock()
}

// After runs fn inside the first Step at or past now+d. The returned func
// cancels it; cancelling twice or after firing is a no-op.
func (l *Loop) After(d time.Duration, fn func()) (cancel func()) {
	return l.timers.Add(l.now().Add(d), fn)
}

// Now reads the loop clock.
func (l *Loop) Now() time.Time { return l.now() }

// Ticks returns the number of completed steps.
func (l *Loop) Ticks() uint64 { return l.ticks }

// Pending reports queued mailbox work and armed timers.
func (l *Loop) Pending() (posted, timers int) {
	l.mu.Lock()
	posted = len(l.mailbox)
	l.mu.Unlock()
	return posted, l.timers.Len()
}

// Step drains the mailbox, fires due timers, then calls OnTick.
func (l *Loop) Step() {
	l.mu.Lock()
	work := l.mailbox
	l.mailbox = nil
	l.mu.Unlock()

	for _, fn := range work {
		fn()
	}
	if n := l.timers.Fire(l.now()); n > 0 {
		l.logger.Debugf("[LOOP] fired %d timers at tick %d", n, l.ticks)
	}
	if l.OnTick != nil {
		l.OnTick()
	}
	l.ticks++
}

// Run steps the loop every 16ms until ctx is cancelled. Displays that own
// their own frame callback call Step directly instead.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Step()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
