// Package loop provides the single-goroutine event loop every editor
// instance runs on, plus a manually driven scheduler for tests.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var ErrStopped = errors.New("loop: stopped")

var loopLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	loopLogger = l
}

// Scheduler is what the editor needs from its host event loop.
type Scheduler interface {
	// Post queues fn to run on the loop after the current task.
	Post(fn func())
	// AfterFunc runs fn on the loop once d has elapsed, unless stopped.
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

type Timer interface {
	// Stop prevents the timer from firing and reports whether it was pending.
	Stop() bool
}

type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool
	stopped atomic.Bool
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		l.stopped.Store(true)
		close(l.done)
	}()

	for {
		for {
			fn := l.next()
			if fn == nil {
				break
			}
			l.run(fn)
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			loopLogger.Error().Interface("panic", r).Msg("Recovered from panic in loop task")
		}
	}()
	fn()
}

func (l *Loop) Post(fn func()) {
	if l.stopped.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it. It must not be called from a
// loop task.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.stopped.CompareAndSwap(false, true)
}
