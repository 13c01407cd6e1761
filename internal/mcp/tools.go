package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/elementa/internal/game"
)

// Tools holds the game session served over one MCP connection.
type Tools struct {
	// Defaults applies to every session start_game creates.
	Defaults  SessionConfig
	// AgentDeck, if set, is dealt to the agent's seat.
	AgentDeck []game.Archetype

	mu     sync.Mutex
	active *GameSession
}

// NewTools creates the tool set.
func NewTools(defaults SessionConfig) *Tools {
	return &Tools{Defaults: defaults}
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(takeActionTool(), t.handleTakeAction)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Elementa match against the scripted opponent. "+
			"Returns the initial board and the first pending decision. Same seed, same decks."),
		mcp.WithNumber("seed", mcp.Description("Match seed; 0 or omitted picks one at random")),
		mcp.WithNumber("player", mcp.Description("Seat to play: 0 = moves first (default), 1 = moves second")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the pending action list. "+
			"Playing, fusing or attacking ends your turn; so does passing."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current board, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) session() *GameSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	if t.active != nil {
		t.mu.Unlock()
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	cfg := t.Defaults
	cfg.Seed = int64(request.GetInt("seed", int(cfg.Seed)))
	cfg.AgentPlayer = request.GetInt("player", cfg.AgentPlayer)
	if t.AgentDeck != nil && (cfg.AgentPlayer == 0 || cfg.AgentPlayer == 1) {
		cfg.Decks[cfg.AgentPlayer] = t.AgentDeck
	}

	sess, err := NewGameSession(cfg)
	if err != nil {
		t.mu.Unlock()
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.active = sess
	t.mu.Unlock()

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	t.finishIfOver(resp)
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	pending := sess.pending()
	if pending == nil || pending.Type != DecisionChooseAction {
		return mcp.NewToolResultError("No pending decision."), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}

	sess.respond(index)

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	t.finishIfOver(resp)
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.response())), nil
}

// finishIfOver drops the session once its match has ended.
func (t *Tools) finishIfOver(resp *ToolResponse) {
	if !resp.GameOver {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		t.active.Close()
		t.active = nil
	}
}
