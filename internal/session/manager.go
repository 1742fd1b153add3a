package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// Manager keeps live sessions by ID.
type Manager struct {
	defaults Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. defaults fills any zero field of the
// options passed to Create.
func NewManager(defaults Options) *Manager {
	return &Manager{
		defaults: defaults,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session under a fresh UUID.
func (m *Manager) Create(opts Options) *Session {
	if opts.GameID == "" {
		opts.GameID = m.defaults.GameID
	}
	if opts.Player == "" {
		opts.Player = m.defaults.Player
	}
	if opts.Rows == 0 && opts.Cols == 0 {
		opts.Rows, opts.Cols = m.defaults.Rows, m.defaults.Cols
	}
	if opts.Seed == 0 {
		opts.Seed = m.defaults.Seed
	}
	if opts.Interval == 0 {
		opts.Interval = m.defaults.Interval
	}
	if opts.Recorder == nil {
		opts.Recorder = m.defaults.Recorder
	}
	if opts.Logger == nil {
		opts.Logger = m.defaults.Logger
	}
	opts.ID = uuid.NewString()

	s := New(opts)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns all sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].ID() < result[j].ID()
		}
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete removes and closes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// CloseAll closes every session. Used on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
