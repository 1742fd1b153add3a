package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-slider/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreOpenExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.slider/scores.db")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".slider", "scores.db")); err != nil {
		t.Errorf("database not created under home: %v", err)
	}
}

func TestBestAndFastestOrdering(t *testing.T) {
	store := openTestStore(t)

	solves := []Solve{
		{GameID: "slider", Player: "a", Rows: 3, Cols: 3, Moves: 30, Seconds: 40},
		{GameID: "slider", Player: "b", Rows: 3, Cols: 3, Moves: 20, Seconds: 90},
		{GameID: "slider", Player: "c", Rows: 3, Cols: 3, Moves: 20, Seconds: 60},
		{GameID: "slider", Player: "d", Rows: 3, Cols: 3, Moves: 50, Seconds: 10},
		{GameID: "slider_numbers", Player: "a", Rows: 3, Cols: 3, Moves: 5, Seconds: 5},
	}
	for _, s := range solves {
		if _, err := store.SaveSolve(s); err != nil {
			t.Fatalf("SaveSolve() failed: %v", err)
		}
	}

	tests := []struct {
		name    string
		query   func(string, int) ([]Solve, error)
		limit   int
		players []string
	}{
		{"best by moves then seconds", store.BestSolves, 10, []string{"c", "b", "a", "d"}},
		{"fastest by seconds", store.FastestSolves, 10, []string{"d", "a", "c", "b"}},
		{"limit applies", store.BestSolves, 2, []string{"c", "b"}},
		{"zero limit defaults to ten", store.BestSolves, 0, []string{"c", "b", "a", "d"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.query("slider", tc.limit)
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if len(got) != len(tc.players) {
				t.Fatalf("got %d solves, want %d", len(got), len(tc.players))
			}
			for i, p := range tc.players {
				if got[i].Player != p {
					t.Errorf("position %d = %s, want %s", i, got[i].Player, p)
				}
			}
		})
	}
}

func TestCreatedAtRoundTrip(t *testing.T) {
	store := openTestStore(t)

	when := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	if _, err := store.SaveSolve(Solve{GameID: "slider", Rows: 3, Cols: 3, Moves: 10, Seconds: 12, CreatedAt: when}); err != nil {
		t.Fatal(err)
	}

	got, err := store.AllSolves("slider")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].CreatedAt.Equal(when) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, when)
	}
}

func TestPersonalBest(t *testing.T) {
	store := openTestStore(t)

	best, err := store.PersonalBest("slider", "tom")
	if err != nil {
		t.Fatal(err)
	}
	if best != nil {
		t.Errorf("PersonalBest() with no solves = %+v, want nil", best)
	}

	for _, m := range []int{40, 25, 33} {
		if _, err := store.SaveSolve(Solve{GameID: "slider", Player: "tom", Rows: 3, Cols: 3, Moves: m, Seconds: m}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.SaveSolve(Solve{GameID: "slider", Player: "jerry", Rows: 3, Cols: 3, Moves: 4, Seconds: 4}); err != nil {
		t.Fatal(err)
	}

	best, err = store.PersonalBest("slider", "tom")
	if err != nil {
		t.Fatal(err)
	}
	if best == nil || best.Moves != 25 {
		t.Errorf("PersonalBest() = %+v, want 25 moves", best)
	}
}

func TestRecordSolve(t *testing.T) {
	store := openTestStore(t)

	var rec session.ResultRecorder = store
	err := rec.RecordSolve(session.SolveResult{
		SessionID: "abc",
		GameID:    "slider",
		Player:    "web",
		Rows:      3,
		Cols:      3,
		Moves:     17,
		Seconds:   42,
		SolvedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordSolve() failed: %v", err)
	}

	got, err := store.BestSolves("slider", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Moves != 17 || got[0].Seconds != 42 || got[0].Player != "web" {
		t.Errorf("stored solve = %+v", got)
	}
}

func TestClearSolves(t *testing.T) {
	store := openTestStore(t)

	store.SaveSolve(Solve{GameID: "slider", Moves: 1, Seconds: 1})
	store.SaveSolve(Solve{GameID: "slider_numbers", Moves: 1, Seconds: 1})

	if err := store.ClearSolves("slider"); err != nil {
		t.Fatalf("ClearSolves() failed: %v", err)
	}

	left, _ := store.AllSolves("slider")
	if len(left) != 0 {
		t.Errorf("%d solves left after clear", len(left))
	}
	other, _ := store.AllSolves("slider_numbers")
	if len(other) != 1 {
		t.Error("ClearSolves removed another game's solves")
	}
}

func TestGameStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetGameStats("slider")
	if err != nil {
		t.Fatal(err)
	}
	if empty.SolvesCount != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}

	store.SaveSolve(Solve{GameID: "slider", Moves: 20, Seconds: 50})
	store.SaveSolve(Solve{GameID: "slider", Moves: 40, Seconds: 30})
	store.SaveSolve(Solve{GameID: "slider_numbers", Moves: 9, Seconds: 9})

	stats, err := store.GetGameStats("slider")
	if err != nil {
		t.Fatal(err)
	}
	if stats.SolvesCount != 2 || stats.BestMoves != 20 || stats.FastestSeconds != 30 || stats.AvgMoves != 30 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all["slider_numbers"].SolvesCount != 1 {
		t.Errorf("all stats = %+v", all)
	}
}
