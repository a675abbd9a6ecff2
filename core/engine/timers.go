package engine

import (
	"sort"
	"time"
)

type timer struct {
	id   uint64
	due  time.Time
	fn   func()
	dead bool
}

// Timers is a set of deferred callbacks fired explicitly by Fire. It is not
// safe for concurrent use; the Loop only touches it from Step.
type Timers struct {
	next    uint64
	pending []*timer
}

func NewTimers() *Timers { return &Timers{} }

// Add schedules fn at due and returns its cancel func.
func (t *Timers) Add(due time.Time, fn func()) func() {
	t.next++
	tm := &timer{id: t.next, due: due, fn: fn}
	t.pending = append(t.pending, tm)
	return func() { tm.dead = true }
}

// Len counts armed timers.
func (t *Timers) Len() int {
	n := 0
	for _, tm := range t.pending {
		if !tm.dead {
			n++
		}
	}
	return n
}

// Fire runs every live timer due at or before now, earliest first (ties in
// scheduling order). Timers added while firing wait for the next call.
func (t *Timers) Fire(now time.Time) int {
	var due, keep []*timer
	for _, tm := range t.pending {
		switch {
		case tm.dead:
		case !tm.due.After(now):
			due = append(due, tm)
		default:
			keep = append(keep, tm)
		}
	}
	t.pending = keep
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	fired := 0
	for _, tm := range due {
		// An earlier callback in this batch may have cancelled a later one.
		if tm.dead {
			continue
		}
		tm.dead = true
		tm.fn()
		fired++
	}
	return fired
}
