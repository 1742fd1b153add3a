package session

import (
	"errors"
	"testing"
	"time"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Options{Rows: 2, Cols: 3, Interval: time.Hour, Player: "tom"})
	defer m.CloseAll()

	a := m.Create(Options{})
	b := m.Create(Options{Player: "jerry"})

	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("IDs not unique: %q %q", a.ID(), b.ID())
	}
	if st := a.State(); st.Rows != 2 || st.Cols != 3 {
		t.Errorf("defaults not applied: %dx%d", st.Rows, st.Cols)
	}
	if a.Player() != "tom" || b.Player() != "jerry" {
		t.Errorf("players = %q, %q", a.Player(), b.Player())
	}

	got, err := m.Get(a.ID())
	if err != nil || got != a {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	list := m.List()
	if len(list) != 2 || m.Count() != 2 {
		t.Fatalf("List() returned %d sessions", len(list))
	}

	if err := m.Delete(a.ID()); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	select {
	case <-a.Done():
	default:
		t.Error("deleted session should be closed")
	}

	if _, err := m.Get(a.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after delete = %v, want ErrSessionNotFound", err)
	}
	if err := m.Delete(a.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Delete() = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerCloseAll(t *testing.T) {
	m := NewManager(Options{Interval: time.Hour})
	s := m.Create(Options{})

	m.CloseAll()

	if m.Count() != 0 {
		t.Errorf("Count() = %d after CloseAll", m.Count())
	}
	if s.ClockRunning() {
		t.Error("CloseAll should stop session clocks")
	}
}
