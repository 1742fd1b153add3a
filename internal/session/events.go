package session

import (
	"sync"

	"github.com/vovakirdan/tui-slider/internal/puzzle"
)

// EventType identifies a session event.
type EventType string

const (
	EventState   EventType = "state"   // A move or clock tick changed the state
	EventSolved  EventType = "solved"  // The puzzle was just solved
	EventRestart EventType = "restart" // Play Again reshuffled the board
)

// Event is pushed to subscribers whenever the session state changes.
type Event struct {
	Type      EventType        `json:"type"`
	SessionID string           `json:"session_id"`
	State     puzzle.GameState `json:"state"`
}

// defaultEventBuffer is the per-subscriber buffer used when none is given.
const defaultEventBuffer = 64

// Subscription receives the events of one session.
type Subscription struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	cancel    func()
}

func newSubscription(buffer int) *Subscription {
	if buffer < 1 {
		buffer = defaultEventBuffer
	}
	return &Subscription{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// send delivers evt without blocking.
// If the buffer is full, the oldest event is dropped.
func (s *Subscription) send(evt Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Events returns the channel to receive events from.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Done closes when the subscription or its session ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches the subscription from its session.
// Safe to call multiple times.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
}
