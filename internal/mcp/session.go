package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/log"
	"github.com/peterkuimelis/elementa/internal/net"
)

// DecisionType identifies what kind of decision the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseAction DecisionType = "choose_action"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type    DecisionType     `json:"type"`
	Player  int              `json:"player"`
	State   *net.StateView   `json:"state"`
	Actions []net.ActionView `json:"actions,omitempty"`
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []net.EventView `json:"events"`
	State    *net.StateView  `json:"state,omitempty"`
	Pending  *PendingView    `json:"pending,omitempty"`
	GameOver bool            `json:"game_over"`
	Winner   int             `json:"winner"`
	Result   string          `json:"result,omitempty"`
	Seed     int64           `json:"seed,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type    DecisionType     `json:"type"`
	Actions []net.ActionView `json:"actions,omitempty"`
}

// SessionConfig configures a match between the agent and the scripted AI.
type SessionConfig struct {
	Seed        int64
	AgentPlayer int
	Decks       [2][]game.Archetype
	MaxTurns    int
	HandSize    int
	// AIThreshold is the scripted opponent's attack threshold.
	AIThreshold int
}

// DefaultSessionConfig uses the engine defaults for every limit.
var DefaultSessionConfig = SessionConfig{
	MaxTurns:    game.DefaultMaxTurns,
	HandSize:    game.DefaultHandSize,
	AIThreshold: game.DefaultAttackThreshold,
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	duel        *game.Duel
	agentCtrl   *AgentController
	agentPlayer int
	cancel      context.CancelFunc

	pendingCh chan *PendingDecision

	mu             sync.Mutex
	currentPending *PendingDecision
	events         []net.EventView
	gameOver       bool
	winner         int
	result         string
}

// NewGameSession creates a session and starts the duel in the background.
// The agent's turns are not timed.
func NewGameSession(cfg SessionConfig) (*GameSession, error) {
	if cfg.AgentPlayer != 0 && cfg.AgentPlayer != 1 {
		return nil, fmt.Errorf("agent player must be 0 or 1, got %d", cfg.AgentPlayer)
	}

	sess := &GameSession{
		agentPlayer: cfg.AgentPlayer,
		pendingCh:   make(chan *PendingDecision, 1),
		winner:      -1,
	}
	sess.agentCtrl = NewAgentController(cfg.AgentPlayer, sess)
	aiPlayer := 1 - cfg.AgentPlayer
	ai := game.NewAIController(aiPlayer, cfg.Seed+int64(aiPlayer)+1, cfg.AIThreshold)

	var ctrl [2]game.PlayerController
	ctrl[cfg.AgentPlayer] = sess.agentCtrl
	ctrl[aiPlayer] = ai

	sess.duel = game.NewDuel(game.DuelConfig{
		Decks:       cfg.Decks,
		Logger:      log.NewMemoryLogger(),
		Seed:        cfg.Seed,
		MaxTurns:    cfg.MaxTurns,
		HandSize:    cfg.HandSize,
		// The agent answers through tool calls, so its seat is untimed.
		TurnTimeout: -1,
	}, ctrl[0], ctrl[1])

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	go func() {
		winner, err := sess.duel.Run(ctx)
		result := sess.duel.State.Result
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
		}

		sess.mu.Lock()
		sess.gameOver = true
		sess.winner = winner
		sess.result = result
		sess.mu.Unlock()

		select {
		case sess.pendingCh <- &PendingDecision{
			Type:   DecisionGameOver,
			Player: winner,
			State:  net.BuildStateView(sess.duel.State, sess.agentPlayer),
		}:
		default:
		}
	}()

	return sess, nil
}

// Seed is the seed the duel was built from.
func (s *GameSession) Seed() int64 {
	return s.duel.State.Seed
}

// Close stops the duel.
func (s *GameSession) Close() {
	s.cancel()
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev net.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []net.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []net.EventView{}
	}
	return events
}

// pending returns the decision the agent owes, if any.
func (s *GameSession) pending() *PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPending
}

// respond hands the agent's choice to the duel.
func (s *GameSession) respond(index int) {
	s.mu.Lock()
	s.currentPending = nil
	s.mu.Unlock()
	s.agentCtrl.responseCh <- index
}

// waitForPending blocks until the next decision arrives from the game engine,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	s.currentPending = pending
	s.mu.Unlock()

	return s.response(), nil
}

// response builds a ToolResponse from the current pending decision.
func (s *GameSession) response() *ToolResponse {
	resp := &ToolResponse{
		Events: s.drainEvents(),
		Seed:   s.Seed(),
		Winner: -1,
	}
	pending := s.pending()
	if pending == nil {
		return resp
	}
	resp.State = pending.State

	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		s.mu.Unlock()
		return resp
	}
	resp.Pending = &PendingView{Type: pending.Type, Actions: pending.Actions}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
