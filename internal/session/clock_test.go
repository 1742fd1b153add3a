package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestClockTicksUntilStopped(t *testing.T) {
	c := NewClock(5 * time.Millisecond)

	var ticks atomic.Int32
	if !c.Start(func() { ticks.Add(1) }) {
		t.Fatal("Start() on a stopped clock should return true")
	}
	if c.Start(func() {}) {
		t.Error("Start() on a running clock should return false")
	}

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() < 3 {
		t.Fatalf("got %d ticks, want at least 3", ticks.Load())
	}

	c.Stop()
	if c.Running() {
		t.Error("clock should not be running after Stop")
	}

	// Stop returns only after the goroutine exited, so no tick can follow.
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if ticks.Load() != after {
		t.Errorf("ticks continued after Stop: %d -> %d", after, ticks.Load())
	}
}

func TestClockStopIdempotent(t *testing.T) {
	c := NewClock(time.Hour)
	c.Stop() // never started

	c.Start(func() {})
	c.Stop()
	c.Stop()

	if c.Running() {
		t.Error("clock should be stopped")
	}
}

func TestClockRestartable(t *testing.T) {
	c := NewClock(5 * time.Millisecond)
	c.Start(func() {})
	c.Stop()

	ticked := make(chan struct{}, 1)
	if !c.Start(func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	}) {
		t.Fatal("clock should start again after Stop")
	}
	defer c.Stop()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("restarted clock never ticked")
	}
}

func TestClockDefaultInterval(t *testing.T) {
	if got := NewClock(0).Interval(); got != time.Second {
		t.Errorf("Interval() = %v, want 1s", got)
	}
}
