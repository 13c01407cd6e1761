package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/log"
	"github.com/peterkuimelis/elementa/internal/room"
)

// Peer stands for the remote seat of a LAN duel. It delivers the remote
// engine's events to the local Duel (game.EventSource) and relays every
// locally applied event to the remote engine (game.EventSink).
//
// The host is the resync authority: when the guest cannot apply a host
// event it asks for a snapshot, and when the host cannot apply a guest event
// it pushes one. Every snapshot opens a new epoch; events stamped with an
// older epoch are dropped.
type Peer struct {
	t      Transport
	role   room.Role // local role
	epoch  int
	logger *slog.Logger

	backlog      []GameEventPayload
	resyncWanted bool              // host: guest asked for a snapshot
	snapshot     *GameEventPayload // guest: snapshot waiting to be adopted
	left         bool
}

// NewPeer creates the remote seat for a local participant holding role.
// pending are relay messages received before the duel started.
func NewPeer(t Transport, role room.Role, pending []ServerMessage, logger *slog.Logger) *Peer {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Peer{
		t:      t,
		role:   role,
		logger: logger.With("component", "peer", "role", string(role)),
	}
	for _, msg := range pending {
		p.pump(msg)
	}
	return p
}

// Seat is the engine seat the peer stands for.
func (p *Peer) Seat() int {
	return p.role.Other().Seat()
}

func (p *Peer) isHost() bool {
	return p.role == room.RoleHost
}

// pump files one relay message.
func (p *Peer) pump(msg ServerMessage) {
	switch msg.Type {
	case MsgGameEvent:
		payload, err := UnmarshalPayload(msg.Event)
		if err != nil {
			p.logger.Warn("dropping game event", "error", err)
			return
		}
		switch payload.Type {
		case EventResyncRequest:
			if p.isHost() {
				p.resyncWanted = true
			}
		case EventSnapshot:
			if !p.isHost() && payload.Snapshot != nil {
				p.snapshot = &payload
			}
		default:
			p.backlog = append(p.backlog, payload)
		}
	case MsgPlayerLeft:
		p.left = true
	case MsgTurnChanged:
		p.logger.Debug("turn changed", "current", msg.CurrentTurn, "turn", msg.TurnNumber)
	}
}

// drain files every buffered relay message without blocking.
func (p *Peer) drain() {
	for {
		msg, ok := p.t.TryRecv()
		if !ok {
			return
		}
		p.pump(msg)
	}
}

// NextEvent implements game.EventSource.
func (p *Peer) NextEvent(ctx context.Context, state *game.GameState) (game.Event, error) {
	for {
		p.drain()
		if p.resyncWanted {
			if err := p.sendSnapshot(ctx, state); err != nil {
				return nil, err
			}
		}
		if p.snapshot != nil {
			if err := p.adopt(state); err != nil {
				return nil, err
			}
			return nil, game.ErrResynced
		}

		for len(p.backlog) > 0 {
			payload := p.backlog[0]
			p.backlog = p.backlog[1:]
			if payload.Epoch < p.epoch {
				p.logger.Debug("dropping stale event", "type", payload.Type, "epoch", payload.Epoch)
				continue
			}
			ev, err := DecodeEvent(payload)
			if err != nil {
				p.logger.Warn("undecodable peer event", "error", err)
				return nil, p.recover(ctx, state)
			}
			if ev.Actor() != p.Seat() {
				p.logger.Warn("peer event for the wrong seat", "actor", ev.Actor())
				return nil, p.recover(ctx, state)
			}
			return ev, nil
		}
		// events sent before the peer left still count
		if p.left {
			return nil, game.ErrPeerLeft
		}

		msg, err := p.t.Recv(ctx)
		if err != nil {
			return nil, err
		}
		p.pump(msg)
	}
}

// Rejected implements game.EventSource.
func (p *Peer) Rejected(ctx context.Context, state *game.GameState, ev game.Event, cause error) error {
	p.logger.Warn("peer event rejected", "event", fmt.Sprintf("%T", ev), "error", cause)
	return p.recover(ctx, state)
}

// recover brings both engines back to the host's state. It returns
// game.ErrResynced once the local state is authoritative again.
func (p *Peer) recover(ctx context.Context, state *game.GameState) error {
	if p.isHost() {
		if err := p.sendSnapshot(ctx, state); err != nil {
			return err
		}
		return game.ErrResynced
	}

	if err := p.send(ctx, GameEventPayload{Type: EventResyncRequest, Actor: p.role.Seat(), Epoch: p.epoch}); err != nil {
		return err
	}
	for p.snapshot == nil {
		if p.left {
			return game.ErrPeerLeft
		}
		msg, err := p.t.Recv(ctx)
		if err != nil {
			return err
		}
		p.pump(msg)
	}
	if err := p.adopt(state); err != nil {
		return err
	}
	return game.ErrResynced
}

func (p *Peer) sendSnapshot(ctx context.Context, state *game.GameState) error {
	p.resyncWanted = false
	p.epoch++
	snap := state.Snapshot()
	p.logger.Info("sending snapshot", "epoch", p.epoch, "turn", state.Turn)
	return p.send(ctx, GameEventPayload{
		Type:     EventSnapshot,
		Actor:    p.role.Seat(),
		Epoch:    p.epoch,
		Snapshot: &snap,
	})
}

func (p *Peer) adopt(state *game.GameState) error {
	payload := p.snapshot
	p.snapshot = nil
	if err := state.Restore(*payload.Snapshot); err != nil {
		return fmt.Errorf("adopt snapshot: %w", err)
	}
	p.epoch = payload.Epoch
	p.logger.Info("adopted snapshot", "epoch", p.epoch, "turn", state.Turn)
	return nil
}

func (p *Peer) send(ctx context.Context, payload GameEventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", payload.Type, err)
	}
	return p.t.Send(ctx, ClientMessage{Type: MsgGameEvent, Event: data})
}

// Publish implements game.EventSink: a locally applied event is relayed to
// the peer, and a pass also signals the turn change.
func (p *Peer) Publish(ctx context.Context, state *game.GameState, ev game.Event) error {
	p.drain()
	if p.left {
		return game.ErrPeerLeft
	}
	if p.snapshot != nil {
		if err := p.adopt(state); err != nil {
			return err
		}
		return game.ErrResynced
	}

	if p.resyncWanted {
		// the snapshot already includes ev
		if err := p.sendSnapshot(ctx, state); err != nil {
			return err
		}
	} else if err := p.send(ctx, EncodeEvent(ev, p.epoch)); err != nil {
		return err
	}

	if _, ok := ev.(game.Pass); !ok || state.Over {
		return nil
	}
	next := room.RoleHost
	if state.TurnPlayer == 1 {
		next = room.RoleGuest
	}
	return p.t.Send(ctx, ClientMessage{Type: MsgEndTurn, CurrentTurn: next, TurnNumber: state.Turn})
}

// ChooseAction implements game.PlayerController. The duel never asks a
// remote seat to choose.
func (p *Peer) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	return game.Action{}, errors.New("remote seat cannot choose locally")
}

// Notify implements game.PlayerController.
func (p *Peer) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}
