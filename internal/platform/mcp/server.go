// Package mcp exposes puzzle sessions as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/tui-slider/internal/puzzle"
	"github.com/vovakirdan/tui-slider/internal/session"
	"github.com/vovakirdan/tui-slider/internal/storage"
)

const instructions = `Sliding Tile Puzzle - MCP Interface

GAME OBJECTIVE:
Slide tiles into the empty slot until every tile sits on its home cell.
Tile identities are 0-based; tile N belongs at row N / cols, column N % cols.
The highest identity is the empty slot.

AVAILABLE TOOLS:
- new_puzzle: Start a shuffled puzzle and get its session ID
- puzzle_state: Show the board, counters and movable tiles
- move_tile: Slide a tile (by identity, or by row and col) into the empty slot
- restart_puzzle: Reshuffle and reset counters (Play Again)
- best_solves: Show the fewest-moves leaderboard

Moves on tiles that are not next to the empty slot are ignored, not errors.`

// Server wraps an MCP server bound to a session manager.
type Server struct {
	manager   *session.Manager
	store     *storage.Store
	gameID    string
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server. store may be nil, in which case
// best_solves reports that no scores are available.
func NewServer(manager *session.Manager, store *storage.Store, version string) *Server {
	s := &Server{
		manager: manager,
		store:   store,
		gameID:  "slider",
	}

	s.mcpServer = server.NewMCPServer(
		"Slider",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves tools over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	defer s.manager.CloseAll()
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	sessionID := map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by new_puzzle",
	}

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_puzzle",
		Description: "Start a new shuffled puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Name recorded with the solve (optional)",
				},
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Grid rows (optional, default 3)",
				},
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Grid columns (optional, default 3)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Shuffle seed for a reproducible board (optional)",
				},
			},
		},
	}, s.handleNewPuzzle)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_state",
		Description: "Get the current board of a puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
			},
			Required: []string{"session_id"},
		},
	}, s.handlePuzzleState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move_tile",
		Description: "Slide a tile into the empty slot. Give either tile, or row and col",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
				"tile": map[string]interface{}{
					"type":        "integer",
					"description": "Identity of the tile to move",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell to click (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell to click (0-based)",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleMoveTile)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_puzzle",
		Description: "Reshuffle the board and reset moves and time",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
			},
			Required: []string{"session_id"},
		},
	}, s.handleRestart)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "best_solves",
		Description: "List the best recorded solves, fewest moves first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of entries (optional, default 10)",
				},
			},
		},
	}, s.handleBestSolves)
}

func (s *Server) handleNewPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	player, _ := args["player"].(string)
	rows, _ := intArg(args, "rows")
	cols, _ := intArg(args, "cols")
	seed, _ := intArg(args, "seed")

	if rows < 0 || cols < 0 {
		return mcp.NewToolResultError("rows and cols must not be negative"), nil
	}

	sess := s.manager.Create(session.Options{
		Player: player,
		Rows:   rows,
		Cols:   cols,
		Seed:   int64(seed),
	})

	result := fmt.Sprintf("Created puzzle session: %s\n\n%s", sess.ID(), formatState(sess.State()))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handlePuzzleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(formatSession(sess, sess.State())), nil
}

func (s *Server) handleMoveTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	args := arguments(request)
	before := sess.State()

	var (
		st  puzzle.GameState
		err error
	)
	if tile, ok := intArg(args, "tile"); ok {
		st, err = sess.Click(tile)
	} else {
		row, rowOK := intArg(args, "row")
		col, colOK := intArg(args, "col")
		if !rowOK || !colOK {
			return mcp.NewToolResultError("move_tile needs tile, or row and col"), nil
		}
		st, err = sess.ClickCell(row, col)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	switch {
	case st.Moves == before.Moves:
		b.WriteString("Move ignored: that tile is not next to the empty slot.\n\n")
	case st.Solved:
		b.WriteString("Congratulations! You solved the puzzle!\n\n")
	default:
		b.WriteString("Moved.\n\n")
	}
	b.WriteString(formatSession(sess, st))
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	st, err := sess.Restart()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Puzzle reshuffled.\n\n" + formatSession(sess, st)), nil
}

func (s *Server) handleBestSolves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultText("No scores available: storage is disabled."), nil
	}

	limit, ok := intArg(arguments(request), "limit")
	if !ok || limit < 1 {
		limit = 10
	}

	solves, err := s.store.BestSolves(s.gameID, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(solves) == 0 {
		return mcp.NewToolResultText("No solves recorded yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Best solves (%d):\n\n", len(solves))
	for i, sv := range solves {
		fmt.Fprintf(&b, "%2d. %-16s %4d moves %5ds  %dx%d  %s\n",
			i+1, sv.Player, sv.Moves, sv.Seconds, sv.Rows, sv.Cols,
			sv.CreatedAt.Format("2006-01-02"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// lookup resolves the session_id argument. On failure it returns the
// tool error to send back.
func (s *Server) lookup(request mcp.CallToolRequest) (*session.Session, *mcp.CallToolResult) {
	id, _ := arguments(request)["session_id"].(string)
	if id == "" {
		return nil, mcp.NewToolResultError("session_id is required")
	}
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, id))
	}
	return sess, nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func formatSession(sess *session.Session, st puzzle.GameState) string {
	return fmt.Sprintf("Session: %s (player %s)\n%s", sess.ID(), sess.Player(), formatState(st))
}

// formatState draws the board with tile identities; the empty slot is blank.
func formatState(st puzzle.GameState) string {
	var b strings.Builder

	solved := "no"
	if st.Solved {
		solved = "yes"
	}
	fmt.Fprintf(&b, "Moves: %d | Time: %d seconds | Solved: %s\n\n", st.Moves, st.ElapsedSeconds, solved)

	width := len(fmt.Sprint(st.Rows*st.Cols - 1))
	sep := "+" + strings.Repeat(strings.Repeat("-", width+2)+"+", st.Cols) + "\n"

	emptyID := st.EmptyID()
	b.WriteString(sep)
	for _, row := range st.Layout() {
		b.WriteString("|")
		for _, id := range row {
			if id == emptyID && !st.Solved {
				fmt.Fprintf(&b, " %*s |", width, "")
			} else {
				fmt.Fprintf(&b, " %*d |", width, id)
			}
		}
		b.WriteString("\n")
		b.WriteString(sep)
	}

	if movable := st.MovableTiles(); len(movable) > 0 {
		labels := make([]string, len(movable))
		for i, id := range movable {
			labels[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(&b, "\nMovable tiles: %s\n", strings.Join(labels, ", "))
	}
	return b.String()
}
