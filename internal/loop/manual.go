package loop

import (
	"slices"
	"time"
)

// Manual is a Scheduler driven by the caller. Posted tasks run on Flush and
// timers fire on Advance, so tests control time deterministically.
type Manual struct {
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    int
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Flush runs queued tasks, including tasks they queue, until none are left.
func (m *Manual) Flush() {
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// Advance moves the clock forward, firing due timers in deadline order and
// flushing posted tasks after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	m.Flush()
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		t.fired = true
		t.fn()
		m.Flush()
	}
	m.now = target
}

// Set moves the clock without firing timers.
func (m *Manual) Set(now time.Time) {
	m.now = now
}

// Pending reports the number of timers that have neither fired nor stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.timers = slices.DeleteFunc(m.timers, func(t *manualTimer) bool { return t.fired || t.stopped })
	var due *manualTimer
	for _, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if due == nil || t.at.Before(due.at) || (t.at.Equal(due.at) && t.seq < due.seq) {
			due = t
		}
	}
	return due
}

type manualTimer struct {
	at      time.Time
	seq     int
	fn      func()
	fired   bool
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
