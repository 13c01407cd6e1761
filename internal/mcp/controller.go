package mcp

import (
	"context"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/log"
	"github.com/peterkuimelis/elementa/internal/net"
)

// AgentController implements game.PlayerController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type AgentController struct {
	player     int
	session    *GameSession
	responseCh chan int
}

// NewAgentController creates a controller for the given player.
func NewAgentController(player int, session *GameSession) *AgentController {
	return &AgentController{
		player:     player,
		session:    session,
		responseCh: make(chan int),
	}
}

// ChooseAction implements game.PlayerController.
func (c *AgentController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	pending := &PendingDecision{
		Type:    DecisionChooseAction,
		Player:  c.player,
		State:   net.BuildStateView(state, c.player),
		Actions: net.ActionViews(actions),
	}
	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}

	select {
	case idx := <-c.responseCh:
		if idx < 0 || idx >= len(actions) {
			return actions[0], nil
		}
		return actions[idx], nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

// Notify implements game.PlayerController.
func (c *AgentController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(net.EventViewOf(event))
	return nil
}
