package session

import (
	"sync"
	"time"
)

// Clock is a cancellable periodic ticker.
// At most one tick goroutine runs at a time; Stop waits for it to exit.
type Clock struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewClock creates a stopped clock. Non-positive intervals default to one second.
func NewClock(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = time.Second
	}
	return &Clock{interval: interval}
}

// Interval returns the tick period.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Start calls fn once per interval until Stop. Returns false if the clock
// was already running.
func (c *Clock) Start(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return false
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done

	go func() {
		defer close(done)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return true
}

// Stop cancels the ticker and returns after the tick goroutine has exited.
// Safe to call multiple times and on a clock that never started.
// Must not be called from inside the tick callback.
func (c *Clock) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the tick goroutine is active.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}
