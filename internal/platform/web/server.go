// Package web serves the puzzle over HTTP and WebSocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/tui-slider/internal/puzzle"
	"github.com/vovakirdan/tui-slider/internal/session"
	"github.com/vovakirdan/tui-slider/internal/storage"
)

//go:embed static/index.html
var staticFiles embed.FS

// Config holds configuration for the web server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// GameID is the scoreboard used when /api/scores has no game parameter.
	GameID string

	// Picture is the text art served at /picture.
	Picture []string

	// PictureName is sent with the picture in the X-Picture-Name header.
	PictureName string
}

// Server is the HTTP front end over a session.Manager.
type Server struct {
	config  Config
	router  *mux.Router
	manager *session.Manager
	store   *storage.Store
	logger  *log.Logger
	http    *http.Server
}

// NewServer creates a server. store may be nil, in which case the scores
// endpoint answers with an empty list.
func NewServer(cfg Config, manager *session.Manager, store *storage.Store, logger *log.Logger) *Server {
	if cfg.GameID == "" {
		cfg.GameID = "slider"
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "slider-web",
		})
	}

	s := &Server{
		config:  cfg,
		router:  mux.NewRouter(),
		manager: manager,
		store:   store,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/picture", s.handlePicture).Methods("GET")
	s.router.HandleFunc("/ws", s.handleOwnedWebSocket)
	s.router.HandleFunc("/ws/{id}", s.handleWebSocket)

	api := s.router.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/scores", s.handleScores).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server and blocks until SIGINT or SIGTERM.
func (s *Server) ListenAndServe() error {
	s.http = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting web server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-errCh:
		s.manager.CloseAll()
		return err
	}
}

// Shutdown stops every session and then the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.manager.CloseAll()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID        string           `json:"id"`
	GameID    string           `json:"game_id"`
	Player    string           `json:"player"`
	CreatedAt time.Time        `json:"created_at"`
	State     puzzle.GameState `json:"state"`
	Layout    [][]int          `json:"layout"`
	Movable   []int            `json:"movable"`
}

func viewOf(sess *session.Session, st puzzle.GameState) SessionView {
	movable := st.MovableTiles()
	if movable == nil {
		movable = []int{}
	}
	return SessionView{
		ID:        sess.ID(),
		GameID:    sess.GameID(),
		Player:    sess.Player(),
		CreatedAt: sess.CreatedAt(),
		State:     st,
		Layout:    st.Layout(),
		Movable:   movable,
	}
}

type createRequest struct {
	Player string `json:"player"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Seed   int64  `json:"seed"`
}

// moveRequest names the clicked tile either by identity or by cell.
type moveRequest struct {
	Tile *int `json:"tile"`
	Row  *int `json:"row"`
	Col  *int `json:"col"`
}

type scoreView struct {
	Rank      int       `json:"rank"`
	Player    string    `json:"player"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Moves     int       `json:"moves"`
	Seconds   int       `json:"seconds"`
	CreatedAt time.Time `json:"created_at"`
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed on "+r.URL.Path)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handlePicture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.config.PictureName != "" {
		w.Header().Set("X-Picture-Name", s.config.PictureName)
	}
	io.WriteString(w, strings.Join(s.config.Picture, "\n"))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rows < 0 || req.Cols < 0 {
		respondError(w, http.StatusBadRequest, "rows and cols must not be negative")
		return
	}

	sess := s.manager.Create(session.Options{
		Player: req.Player,
		Rows:   req.Rows,
		Cols:   req.Cols,
		Seed:   req.Seed,
	})
	s.logger.Info("session created", "id", sess.ID(), "player", sess.Player())

	respondJSON(w, http.StatusCreated, viewOf(sess, sess.State()))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.manager.List()
	views := make([]SessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, viewOf(sess, sess.State()))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess, sess.State()))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.manager.Delete(id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		st  puzzle.GameState
		err error
	)
	switch {
	case req.Tile != nil:
		st, err = sess.Click(*req.Tile)
	case req.Row != nil && req.Col != nil:
		st, err = sess.ClickCell(*req.Row, *req.Col)
	default:
		respondError(w, http.StatusBadRequest, "move needs tile or row and col")
		return
	}
	if err != nil {
		respondError(w, http.StatusGone, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, viewOf(sess, st))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	st, err := sess.Restart()
	if err != nil {
		respondError(w, http.StatusGone, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess, st))
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		gameID = s.config.GameID
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	scores := []scoreView{}
	if s.store == nil {
		respondJSON(w, http.StatusOK, scores)
		return
	}

	solves, err := s.store.BestSolves(gameID, limit)
	if err != nil {
		s.logger.Error("could not load scores", "game", gameID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load scores")
		return
	}
	for i, sv := range solves {
		scores = append(scores, scoreView{
			Rank:      i + 1,
			Player:    sv.Player,
			Rows:      sv.Rows,
			Cols:      sv.Cols,
			Moves:     sv.Moves,
			Seconds:   sv.Seconds,
			CreatedAt: sv.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, scores)
}

// lookup resolves the {id} route variable, answering 404 when unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

// decodeBody reads JSON into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
