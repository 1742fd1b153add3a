// Package session runs live puzzle games for the web and MCP servers.
//
// A Session owns the single mutable reference to a puzzle.GameState and
// serializes clicks and clock ticks with a mutex. Its Clock runs only while
// the session is open and the puzzle unsolved.
package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-slider/internal/puzzle"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("session closed")

// SolveResult describes a finished puzzle.
type SolveResult struct {
	SessionID string
	GameID    string
	Player    string
	Rows      int
	Cols      int
	Moves     int
	Seconds   int
	SolvedAt  time.Time
}

// ResultRecorder persists finished puzzles.
type ResultRecorder interface {
	RecordSolve(result SolveResult) error
}

// Options configures a new session. Zero values pick defaults.
type Options struct {
	ID       string
	GameID   string // Defaults to "slider"
	Player   string // Defaults to "anonymous"
	Rows     int
	Cols     int
	Seed     int64 // 0 seeds from the clock
	Interval time.Duration
	Recorder ResultRecorder
	Logger   *log.Logger
}

// Session is one live game.
type Session struct {
	id        string
	gameID    string
	player    string
	createdAt time.Time

	mu     sync.Mutex
	state  puzzle.GameState
	rng    *rand.Rand
	round  int // Bumped by Restart
	closed bool

	// clockMu serializes clock transitions. Lock order: clockMu, then mu.
	clockMu  sync.Mutex
	clock    *Clock
	recorder ResultRecorder
	logger   *log.Logger

	subs map[*Subscription]struct{}
	done chan struct{}
}

// New creates a session with a freshly shuffled puzzle and starts its clock.
func New(opts Options) *Session {
	if opts.GameID == "" {
		opts.GameID = "slider"
	}
	if opts.Player == "" {
		opts.Player = "anonymous"
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	s := &Session{
		id:        opts.ID,
		gameID:    opts.GameID,
		player:    opts.Player,
		createdAt: time.Now(),
		state:     puzzle.Initialize(opts.Rows, opts.Cols, rng),
		rng:       rng,
		clock:     NewClock(opts.Interval),
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		subs:      make(map[*Subscription]struct{}),
		done:      make(chan struct{}),
	}

	s.clock.Start(s.Tick)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// GameID returns the game the session plays.
func (s *Session) GameID() string { return s.gameID }

// Player returns the player name recorded with solves.
func (s *Session) Player() string { return s.player }

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns a copy of the current state.
func (s *Session) State() puzzle.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Click applies a click on the tile with the given identity.
// Invalid clicks leave the state unchanged and are not errors.
func (s *Session) Click(tileID int) (puzzle.GameState, error) {
	return s.apply(func(st puzzle.GameState) puzzle.GameState {
		return puzzle.AttemptMove(st, tileID)
	})
}

// ClickCell applies a click on the tile at (row, col).
func (s *Session) ClickCell(row, col int) (puzzle.GameState, error) {
	return s.apply(func(st puzzle.GameState) puzzle.GameState {
		return puzzle.ClickCell(st, row, col)
	})
}

func (s *Session) apply(move func(puzzle.GameState) puzzle.GameState) (puzzle.GameState, error) {
	s.mu.Lock()
	if s.closed {
		st := s.state.Clone()
		s.mu.Unlock()
		return st, ErrSessionClosed
	}

	prev := s.state
	s.state = move(prev)
	justSolved := !prev.Solved && s.state.Solved
	round := s.round

	if s.state.Moves != prev.Moves {
		s.publishLocked(EventState)
	}
	if justSolved {
		s.publishLocked(EventSolved)
	}
	st := s.state.Clone()
	s.mu.Unlock()

	if justSolved {
		s.stopClockIfSolved(round)
		s.record(st)
	}
	return st, nil
}

// stopClockIfSolved stops the clock unless a Restart has started a new
// round since the solving move.
func (s *Session) stopClockIfSolved(round int) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	s.mu.Lock()
	stale := s.round != round || !s.state.Solved
	s.mu.Unlock()
	if stale {
		return
	}
	s.clock.Stop()
}

// Restart reshuffles the board (Play Again) and restarts the clock.
func (s *Session) Restart() (puzzle.GameState, error) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	s.mu.Lock()
	if s.closed {
		st := s.state.Clone()
		s.mu.Unlock()
		return st, ErrSessionClosed
	}
	s.state = puzzle.Initialize(s.state.Rows, s.state.Cols, s.rng)
	s.round++
	s.publishLocked(EventRestart)
	s.mu.Unlock()

	s.clock.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && !s.state.Solved {
		s.clock.Start(s.Tick)
	}
	return s.state.Clone(), nil
}

// Tick advances the elapsed-time counter. It is the clock callback.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Solved {
		return
	}
	s.state = puzzle.Tick(s.state)
	s.publishLocked(EventState)
}

// ClockRunning reports whether the elapsed-time clock is active.
func (s *Session) ClockRunning() bool {
	return s.clock.Running()
}

// Subscribe returns a stream of this session's events.
// A non-positive buffer uses the default size.
func (s *Session) Subscribe(buffer int) *Subscription {
	sub := newSubscription(buffer)
	sub.cancel = func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.closeOnce.Do(func() { close(sub.done) })
		return sub
	}
	s.subs[sub] = struct{}{}
	return sub
}

// Done returns a channel that closes when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the clock and ends every subscription.
// Safe to call multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = make(map[*Subscription]struct{})
	close(s.done)
	s.mu.Unlock()

	s.clock.Stop()

	for sub := range subs {
		sub.closeOnce.Do(func() { close(sub.done) })
	}
}

func (s *Session) publishLocked(t EventType) {
	evt := Event{Type: t, SessionID: s.id, State: s.state.Clone()}
	for sub := range s.subs {
		sub.send(evt)
	}
}

// record hands a finished puzzle to the recorder. Failures are logged only.
func (s *Session) record(st puzzle.GameState) {
	if s.recorder == nil {
		return
	}
	result := SolveResult{
		SessionID: s.id,
		GameID:    s.gameID,
		Player:    s.player,
		Rows:      st.Rows,
		Cols:      st.Cols,
		Moves:     st.Moves,
		Seconds:   st.ElapsedSeconds,
		SolvedAt:  time.Now(),
	}
	if err := s.recorder.RecordSolve(result); err != nil {
		s.logger.Warn("Could not record solve", "session", s.id, "error", err)
	}
}
