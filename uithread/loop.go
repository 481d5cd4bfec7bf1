// Package uithread models the single UI thread: a task queue that other
// goroutines post into and one goroutine drains.
package uithread

import (
	"context"
	"sync"
	"time"
)

// Loop is a FIFO of tasks executed by whoever calls Run or RunPending.
// Post and PostDelayed are safe from any goroutine.
type Loop struct {
	clock Clock

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func New(clock Clock) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	return &Loop{clock: clock, wake: make(chan struct{}, 1)}
}

func (l *Loop) Clock() Clock { return l.clock }

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// PostDelayed queues fn after d. The returned timer cancels it as long as fn
// has not started.
func (l *Loop) PostDelayed(d time.Duration, fn func()) *Timer {
	t := &Timer{}
	stop := l.clock.AfterFunc(d, func() {
		l.Post(func() {
			if t.markFired() {
				fn()
			}
		})
	})
	t.mu.Lock()
	t.stop = stop
	t.mu.Unlock()
	return t
}

// RunPending runs queued tasks until the queue is empty, including tasks
// posted by the tasks themselves. It returns the number of tasks run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
		n++
	}
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains the queue as tasks arrive until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Timer is a pending PostDelayed task.
type Timer struct {
	mu       sync.Mutex
	stop     func() bool
	canceled bool
	fired    bool
}

// Cancel prevents the task from running. It reports false when the task has
// already run or was already cancelled.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.canceled {
		return false
	}
	t.canceled = true
	if t.stop != nil {
		t.stop()
	}
	return true
}

// Active reports whether the task is still due to run.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.fired && !t.canceled
}

func (t *Timer) markFired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled || t.fired {
		return false
	}
	t.fired = true
	return true
}
