package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-slider/internal/session"
	"github.com/vovakirdan/tui-slider/internal/storage"
)

func newTestServer(t *testing.T, store *storage.Store) (*Server, *session.Manager) {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	manager := session.NewManager(session.Options{
		Interval: time.Hour,
		Logger:   logger,
	})
	t.Cleanup(manager.CloseAll)

	srv := NewServer(Config{Picture: []string{"ab", "cd"}}, manager, store, logger)
	return srv, manager
}

func doJSON(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) SessionView {
	t.Helper()
	var view SessionView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return view
}

func createSession(t *testing.T, srv http.Handler) SessionView {
	t.Helper()
	rec := doJSON(t, srv, "POST", "/api/sessions", `{"player":"alice","seed":7}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeView(t, rec)
}

// nonMovableTile returns a tile that is neither empty nor next to the empty slot.
func nonMovableTile(view SessionView) int {
	emptyID := view.State.Rows*view.State.Cols - 1
	for id := 0; id < emptyID; id++ {
		if !slices.Contains(view.Movable, id) {
			return id
		}
	}
	return -1
}

func TestCreateAndGetSession(t *testing.T) {
	srv, manager := newTestServer(t, nil)

	view := createSession(t, srv)
	if view.ID == "" || view.Player != "alice" || view.GameID != "slider" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.State.Rows != 3 || view.State.Cols != 3 || len(view.State.Tiles) != 9 {
		t.Errorf("state dims = %dx%d with %d tiles", view.State.Rows, view.State.Cols, len(view.State.Tiles))
	}
	if view.State.Moves != 0 || view.State.Solved {
		t.Errorf("new session should be unplayed: %+v", view.State)
	}
	if manager.Count() != 1 {
		t.Errorf("Count() = %d, want 1", manager.Count())
	}

	rec := doJSON(t, srv, "GET", "/api/sessions/"+view.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := decodeView(t, rec); got.ID != view.ID {
		t.Errorf("got session %s, want %s", got.ID, view.ID)
	}
}

func TestCreateSessionEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, "POST", "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if view := decodeView(t, rec); view.Player != "anonymous" {
		t.Errorf("Player = %q, want anonymous", view.Player)
	}
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	view := createSession(t, srv)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed create", "POST", "/api/sessions", "{", http.StatusBadRequest},
		{"negative rows", "POST", "/api/sessions", `{"rows":-1}`, http.StatusBadRequest},
		{"malformed move", "POST", "/api/sessions/" + view.ID + "/move", "nope", http.StatusBadRequest},
		{"move without target", "POST", "/api/sessions/" + view.ID + "/move", `{}`, http.StatusBadRequest},
		{"unknown session", "GET", "/api/sessions/missing", "", http.StatusNotFound},
		{"move unknown session", "POST", "/api/sessions/missing/move", `{"tile":0}`, http.StatusNotFound},
		{"delete unknown session", "DELETE", "/api/sessions/missing", "", http.StatusNotFound},
		{"bad limit", "GET", "/api/scores?limit=zero", "", http.StatusBadRequest},
		{"wrong method", "PUT", "/api/sessions", "", http.StatusMethodNotAllowed},
		{"wrong method on session", "PATCH", "/api/sessions/" + view.ID, "", http.StatusMethodNotAllowed},
		{"wrong method on page", "POST", "/picture", "", http.StatusMethodNotAllowed},
		{"unknown route", "GET", "/api/nowhere", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestMethodNotAllowedBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, "DELETE", "/api/scores", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body["error"], "DELETE") {
		t.Errorf("error = %q, want the rejected method named", body["error"])
	}
}

func TestMove(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	view := createSession(t, srv)
	if len(view.Movable) == 0 {
		t.Fatal("expected movable tiles")
	}

	// Invalid clicks answer 200 with the state unchanged.
	stuck := nonMovableTile(view)
	rec := doJSON(t, srv, "POST", "/api/sessions/"+view.ID+"/move", `{"tile":`+itoa(stuck)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeView(t, rec); got.State.Moves != 0 {
		t.Errorf("non-adjacent move changed Moves to %d", got.State.Moves)
	}

	tile := view.Movable[0]
	rec = doJSON(t, srv, "POST", "/api/sessions/"+view.ID+"/move", `{"tile":`+itoa(tile)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	moved := decodeView(t, rec)
	if moved.State.Moves != 1 {
		t.Errorf("Moves = %d, want 1", moved.State.Moves)
	}
	emptyBefore := view.State.Tiles[len(view.State.Tiles)-1]
	if got := moved.State.Tiles[tile]; got.Row != emptyBefore.Row || got.Col != emptyBefore.Col {
		t.Errorf("tile %d at (%d,%d), want (%d,%d)", tile, got.Row, got.Col, emptyBefore.Row, emptyBefore.Col)
	}

	if moved.State.Solved {
		t.Skip("seed produced a one-move solve")
	}

	// The same tile can move back by cell address.
	cell := moved.State.Tiles[tile]
	rec = doJSON(t, srv, "POST", "/api/sessions/"+view.ID+"/move",
		`{"row":`+itoa(cell.Row)+`,"col":`+itoa(cell.Col)+`}`)
	if got := decodeView(t, rec); got.State.Moves != 2 {
		t.Errorf("Moves after cell move = %d, want 2", got.State.Moves)
	}
}

func TestRestartAndDelete(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	view := createSession(t, srv)

	doJSON(t, srv, "POST", "/api/sessions/"+view.ID+"/move", `{"tile":`+itoa(view.Movable[0])+`}`)

	rec := doJSON(t, srv, "POST", "/api/sessions/"+view.ID+"/restart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("restart status = %d", rec.Code)
	}
	if got := decodeView(t, rec); got.State.Moves != 0 || got.State.ElapsedSeconds != 0 {
		t.Errorf("restart should reset counters: %+v", got.State)
	}

	rec = doJSON(t, srv, "DELETE", "/api/sessions/"+view.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if manager.Count() != 0 {
		t.Errorf("Count() = %d after delete", manager.Count())
	}
}

func TestListSessions(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	createSession(t, srv)
	createSession(t, srv)

	rec := doJSON(t, srv, "GET", "/api/sessions", "")
	var views []SessionView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("got %d sessions, want 2", len(views))
	}
}

func TestScores(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for _, moves := range []int{40, 25, 31} {
		if _, err := store.SaveSolve(storage.Solve{GameID: "slider", Player: "p", Rows: 3, Cols: 3, Moves: moves, Seconds: 60}); err != nil {
			t.Fatalf("SaveSolve() failed: %v", err)
		}
	}

	srv, _ := newTestServer(t, store)
	rec := doJSON(t, srv, "GET", "/api/scores?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var scores []scoreView
	if err := json.NewDecoder(rec.Body).Decode(&scores); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(scores) != 2 || scores[0].Moves != 25 || scores[1].Moves != 31 || scores[0].Rank != 1 {
		t.Errorf("scores = %+v", scores)
	}
}

func TestScoresWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv, "GET", "/api/scores", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("got %d %q, want 200 []", rec.Code, rec.Body.String())
	}
}

func TestIndexAndPicture(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, "GET", "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "S L I D E R") {
		t.Errorf("index: %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/picture", "")
	if rec.Body.String() != "ab\ncd" {
		t.Errorf("picture = %q", rec.Body.String())
	}
	if name := rec.Header().Get("X-Picture-Name"); name != "" {
		t.Errorf("unnamed picture sent X-Picture-Name %q", name)
	}
}

func TestPictureName(t *testing.T) {
	manager := session.NewManager(session.Options{Interval: time.Hour, Logger: log.New(&bytes.Buffer{})})
	t.Cleanup(manager.CloseAll)
	srv := NewServer(Config{Picture: []string{"ab"}, PictureName: "tom"}, manager, nil, log.New(&bytes.Buffer{}))

	rec := doJSON(t, srv, "GET", "/picture", "")
	if name := rec.Header().Get("X-Picture-Name"); name != "tom" {
		t.Errorf("X-Picture-Name = %q, want tom", name)
	}
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func readMessage(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg serverMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	return msg
}

func TestWebSocketClick(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	view := createSession(t, srv)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/"+view.ID), nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer conn.Close()

	first := readMessage(t, conn)
	if first.Type != string(session.EventState) || first.Session == nil || first.Session.ID != view.ID {
		t.Fatalf("first message = %+v", first)
	}

	tile := first.Session.Movable[0]
	if err := conn.WriteJSON(clientMessage{Type: msgClick, Tile: &tile}); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Session == nil || msg.Session.State.Moves != 1 {
		t.Errorf("after click got %+v", msg)
	}

	if err := conn.WriteJSON(clientMessage{Type: "dance"}); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != msgError {
		t.Errorf("unknown message type should answer error, got %+v", msg)
	}

	if err := conn.WriteJSON(clientMessage{Type: msgRestart}); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
	msg = readMessage(t, conn)
	if msg.Type != string(session.EventRestart) || msg.Session.State.Moves != 0 {
		t.Errorf("after restart got %+v", msg)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/missing"), nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response, got %v", resp)
	}
}

func TestOwnedWebSocketEndsSession(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws?player=bob"), nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}

	first := readMessage(t, conn)
	if first.Session == nil || first.Session.Player != "bob" {
		t.Fatalf("first message = %+v", first)
	}
	sess, err := manager.Get(first.Session.ID)
	if err != nil {
		t.Fatalf("owned session not registered: %v", err)
	}
	if !sess.ClockRunning() {
		t.Error("clock should run while the owner is connected")
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for manager.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if manager.Count() != 0 {
		t.Fatal("owned session should be deleted on disconnect")
	}
	if sess.ClockRunning() {
		t.Error("clock should stop on disconnect")
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
