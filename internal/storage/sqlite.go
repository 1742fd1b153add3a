// Package storage provides SQLite-based persistence for finished puzzles.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-slider/internal/session"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for solve persistence.
type Store struct {
	db *sql.DB
}

// Solve represents a single finished puzzle.
type Solve struct {
	ID        int64
	GameID    string
	Player    string
	Rows      int
	Cols      int
	Moves     int
	Seconds   int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS solves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			grid_rows INTEGER NOT NULL,
			grid_cols INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			seconds INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_solves_game_id ON solves(game_id);
		CREATE INDEX IF NOT EXISTS idx_solves_best ON solves(game_id, moves, seconds);
		CREATE INDEX IF NOT EXISTS idx_solves_player ON solves(game_id, player);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSolve records a finished puzzle and returns the ID of the inserted record.
// A zero CreatedAt is stamped with the current time.
func (s *Store) SaveSolve(solve Solve) (int64, error) {
	if solve.CreatedAt.IsZero() {
		solve.CreatedAt = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT INTO solves (game_id, player, grid_rows, grid_cols, moves, seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		solve.GameID, solve.Player, solve.Rows, solve.Cols, solve.Moves, solve.Seconds,
		solve.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save solve: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecordSolve stores a solve reported by a live session.
func (s *Store) RecordSolve(r session.SolveResult) error {
	_, err := s.SaveSolve(Solve{
		GameID:    r.GameID,
		Player:    r.Player,
		Rows:      r.Rows,
		Cols:      r.Cols,
		Moves:     r.Moves,
		Seconds:   r.Seconds,
		CreatedAt: r.SolvedAt,
	})
	return err
}

// BestSolves retrieves the top N solves for the given game.
// Fewer moves rank first; ties go to the faster solve.
func (s *Store) BestSolves(gameID string, limit int) ([]Solve, error) {
	return s.querySolves(
		`SELECT id, game_id, player, grid_rows, grid_cols, moves, seconds, created_at
		 FROM solves
		 WHERE game_id = ?
		 ORDER BY moves ASC, seconds ASC, id ASC
		 LIMIT ?`,
		gameID, defaultLimit(limit),
	)
}

// FastestSolves retrieves the N quickest solves for the given game.
func (s *Store) FastestSolves(gameID string, limit int) ([]Solve, error) {
	return s.querySolves(
		`SELECT id, game_id, player, grid_rows, grid_cols, moves, seconds, created_at
		 FROM solves
		 WHERE game_id = ?
		 ORDER BY seconds ASC, moves ASC, id ASC
		 LIMIT ?`,
		gameID, defaultLimit(limit),
	)
}

// AllSolves retrieves every solve for the given game, newest first.
func (s *Store) AllSolves(gameID string) ([]Solve, error) {
	return s.querySolves(
		`SELECT id, game_id, player, grid_rows, grid_cols, moves, seconds, created_at
		 FROM solves
		 WHERE game_id = ?
		 ORDER BY created_at DESC, id DESC`,
		gameID,
	)
}

// PersonalBest returns a player's best solve for the game, or nil if none exist.
func (s *Store) PersonalBest(gameID, player string) (*Solve, error) {
	solves, err := s.querySolves(
		`SELECT id, game_id, player, grid_rows, grid_cols, moves, seconds, created_at
		 FROM solves
		 WHERE game_id = ? AND player = ?
		 ORDER BY moves ASC, seconds ASC, id ASC
		 LIMIT 1`,
		gameID, player,
	)
	if err != nil {
		return nil, err
	}
	if len(solves) == 0 {
		return nil, nil
	}
	return &solves[0], nil
}

// ClearSolves deletes all solves for the given game.
func (s *Store) ClearSolves(gameID string) error {
	_, err := s.db.Exec("DELETE FROM solves WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear solves: %w", err)
	}
	return nil
}

func (s *Store) querySolves(query string, args ...any) ([]Solve, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query solves: %w", err)
	}
	defer rows.Close()

	var solves []Solve
	for rows.Next() {
		var e Solve
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Player, &e.Rows, &e.Cols, &e.Moves, &e.Seconds, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		solves = append(solves, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return solves, nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID         string
	SolvesCount    int
	BestMoves      int
	FastestSeconds int
	AvgMoves       float64
	AvgSeconds     float64
	LastPlayed     time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(moves), 0), COALESCE(MIN(seconds), 0),
		        COALESCE(AVG(moves), 0), COALESCE(AVG(seconds), 0)
		 FROM solves WHERE game_id = ?`,
		gameID,
	).Scan(&stats.SolvesCount, &stats.BestMoves, &stats.FastestSeconds, &stats.AvgMoves, &stats.AvgSeconds)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM solves WHERE game_id = ? ORDER BY created_at DESC LIMIT 1`,
		gameID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTimestamp(lastPlayed)
	}

	return stats, nil
}

// GetAllGamesStats retrieves statistics for all games that have been solved.
func (s *Store) GetAllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), MIN(moves), MIN(seconds), AVG(moves), AVG(seconds), MAX(created_at)
		 FROM solves
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var gs GameStats
		var lastPlayed any
		if err := rows.Scan(&gs.GameID, &gs.SolvesCount, &gs.BestMoves, &gs.FastestSeconds, &gs.AvgMoves, &gs.AvgSeconds, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		gs.LastPlayed = parseTimestamp(lastPlayed)
		stats[gs.GameID] = &gs
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTimestamp handles both time.Time and string datetime values.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
