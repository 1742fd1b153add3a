package mcp

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vovakirdan/tui-slider/internal/session"
	"github.com/vovakirdan/tui-slider/internal/storage"
)

func newTestServer(t *testing.T, store *storage.Store) (*Server, *session.Manager) {
	t.Helper()
	manager := session.NewManager(session.Options{
		Interval: time.Hour,
		Logger:   log.New(&bytes.Buffer{}),
	})
	t.Cleanup(manager.CloseAll)
	return NewServer(manager, store, "test"), manager
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func newPuzzle(t *testing.T, s *Server, manager *session.Manager) *session.Session {
	t.Helper()
	result, err := s.handleNewPuzzle(context.Background(), call("new_puzzle", map[string]interface{}{
		"player": "claude",
		"seed":   float64(11),
	}))
	if err != nil {
		t.Fatalf("new_puzzle failed: %v", err)
	}
	text := resultText(t, result)

	sessions := manager.List()
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	if !strings.Contains(text, sessions[0].ID()) {
		t.Errorf("result should name the session ID, got: %s", text)
	}
	return sessions[0]
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t, nil)
	if s.MCPServer() == nil {
		t.Fatal("MCP server should be initialized")
	}
}

func TestNewPuzzle(t *testing.T) {
	s, manager := newTestServer(t, nil)
	sess := newPuzzle(t, s, manager)

	if sess.Player() != "claude" {
		t.Errorf("Player() = %q, want claude", sess.Player())
	}
	st := sess.State()
	if st.Rows != 3 || st.Cols != 3 {
		t.Errorf("dims = %dx%d, want 3x3", st.Rows, st.Cols)
	}

	result, err := s.handleNewPuzzle(context.Background(), call("new_puzzle", map[string]interface{}{
		"rows": float64(-2),
	}))
	if err != nil {
		t.Fatalf("new_puzzle failed: %v", err)
	}
	if !result.IsError {
		t.Error("negative rows should be a tool error")
	}
}

func TestPuzzleState(t *testing.T) {
	s, manager := newTestServer(t, nil)
	sess := newPuzzle(t, s, manager)

	result, err := s.handlePuzzleState(context.Background(), call("puzzle_state", map[string]interface{}{
		"session_id": sess.ID(),
	}))
	if err != nil {
		t.Fatalf("puzzle_state failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Moves: 0", "Time: 0 seconds", "Solved: no", "+---+---+---+"} {
		if !strings.Contains(text, want) {
			t.Errorf("state missing %q:\n%s", want, text)
		}
	}
}

func TestMoveTile(t *testing.T) {
	s, manager := newTestServer(t, nil)
	sess := newPuzzle(t, s, manager)
	ctx := context.Background()

	st := sess.State()
	movable := st.MovableTiles()
	if len(movable) == 0 {
		t.Fatal("expected movable tiles")
	}

	// A tile away from the empty slot is ignored.
	stuck := -1
	for id := 0; id < st.EmptyID(); id++ {
		isMovable := false
		for _, m := range movable {
			if m == id {
				isMovable = true
			}
		}
		if !isMovable {
			stuck = id
			break
		}
	}
	result, err := s.handleMoveTile(ctx, call("move_tile", map[string]interface{}{
		"session_id": sess.ID(),
		"tile":       float64(stuck),
	}))
	if err != nil {
		t.Fatalf("move_tile failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Move ignored") {
		t.Errorf("expected ignored move, got: %s", text)
	}
	if sess.State().Moves != 0 {
		t.Errorf("Moves = %d after ignored move", sess.State().Moves)
	}

	result, err = s.handleMoveTile(ctx, call("move_tile", map[string]interface{}{
		"session_id": sess.ID(),
		"tile":       float64(movable[0]),
	}))
	if err != nil {
		t.Fatalf("move_tile failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if sess.State().Moves != 1 {
		t.Errorf("Moves = %d, want 1", sess.State().Moves)
	}

	result, err = s.handleMoveTile(ctx, call("move_tile", map[string]interface{}{
		"session_id": sess.ID(),
		"row":        float64(0),
	}))
	if err != nil {
		t.Fatalf("move_tile failed: %v", err)
	}
	if !result.IsError {
		t.Error("row without col should be a tool error")
	}
}

func TestUnknownSession(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing id", map[string]interface{}{}},
		{"unknown id", map[string]interface{}{"session_id": "nope"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := s.handlePuzzleState(ctx, call("puzzle_state", tc.args))
			if err != nil {
				t.Fatalf("puzzle_state failed: %v", err)
			}
			if !result.IsError {
				t.Error("expected tool error")
			}
		})
	}
}

func TestRestartPuzzle(t *testing.T) {
	s, manager := newTestServer(t, nil)
	sess := newPuzzle(t, s, manager)
	ctx := context.Background()

	sess.Click(sess.State().MovableTiles()[0])

	result, err := s.handleRestart(ctx, call("restart_puzzle", map[string]interface{}{
		"session_id": sess.ID(),
	}))
	if err != nil {
		t.Fatalf("restart_puzzle failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Moves: 0") {
		t.Errorf("restart should reset moves, got: %s", text)
	}
}

func TestBestSolves(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestServer(t, nil)
	result, err := s.handleBestSolves(ctx, call("best_solves", nil))
	if err != nil {
		t.Fatalf("best_solves failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "storage is disabled") {
		t.Errorf("unexpected text without store: %s", text)
	}

	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	s, _ = newTestServer(t, store)
	result, _ = s.handleBestSolves(ctx, call("best_solves", map[string]interface{}{}))
	if text := resultText(t, result); !strings.Contains(text, "No solves recorded yet") {
		t.Errorf("unexpected text for empty store: %s", text)
	}

	for _, moves := range []int{30, 22} {
		if _, err := store.SaveSolve(storage.Solve{GameID: "slider", Player: "ada", Rows: 3, Cols: 3, Moves: moves, Seconds: 40}); err != nil {
			t.Fatalf("SaveSolve() failed: %v", err)
		}
	}

	result, _ = s.handleBestSolves(ctx, call("best_solves", map[string]interface{}{"limit": float64(1)}))
	text := resultText(t, result)
	if !strings.Contains(text, "22 moves") || strings.Contains(text, "30 moves") {
		t.Errorf("expected only the 22-move solve, got: %s", text)
	}
}

func TestFormatStateHidesEmptyUntilSolved(t *testing.T) {
	s, manager := newTestServer(t, nil)
	sess := newPuzzle(t, s, manager)

	text := formatState(sess.State())
	if strings.Contains(text, "| 8 |") {
		t.Errorf("empty tile should be blank while playing:\n%s", text)
	}
}
