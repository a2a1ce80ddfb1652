package loop

import (
	"context"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}

	if err := l.Do(ctx, func() {}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected tasks in order, got %v", got)
		}
	}
	if len(got) != 5 {
		t.Errorf("Expected 5 tasks, got %d", len(got))
	}
}

func TestLoopTimerStop(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{}, 1)
	timer := l.AfterFunc(20*time.Millisecond, func() { fired <- struct{}{} })
	if !timer.Stop() {
		t.Error("Expected Stop to report a pending timer")
	}

	select {
	case <-fired:
		t.Error("Stopped timer fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestLoopDoAfterStop(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()

	err := l.Do(context.Background(), func() {})
	if err != nil && err != ErrStopped {
		t.Errorf("Expected nil or ErrStopped, got %v", err)
	}
}

func TestManualAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)

	var order []string
	m.AfterFunc(200*time.Millisecond, func() { order = append(order, "b") })
	m.AfterFunc(100*time.Millisecond, func() {
		order = append(order, "a")
		m.Post(func() { order = append(order, "a-post") })
	})
	stopped := m.AfterFunc(150*time.Millisecond, func() { order = append(order, "never") })
	stopped.Stop()

	m.Advance(150 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "a-post" {
		t.Fatalf("Unexpected order after first advance: %v", order)
	}
	if m.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", m.Pending())
	}

	m.Advance(time.Second)
	if order[len(order)-1] != "b" {
		t.Errorf("Expected b to fire last, got %v", order)
	}
	if !m.Now().Equal(start.Add(1150 * time.Millisecond)) {
		t.Errorf("Unexpected clock %v", m.Now())
	}
}
