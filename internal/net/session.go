package net

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/log"
	"github.com/peterkuimelis/elementa/internal/room"
)

// Session describes one LAN match played through the relay. Both peers
// build the standard deck from the relay's seed, so their engines start
// identical.
type Session struct {
	// Code joins an existing room; empty creates one.
	Code string
	// Local picks actions for this participant's seat. It receives the
	// seat index once the role is known.
	Local func(seat int) game.PlayerController

	Logger            log.EventLogger
	TurnTimeout       time.Duration
	PresentationDelay time.Duration
	MaxTurns          int
	HandSize          int

	// Out receives lobby messages such as the room code.
	Out io.Writer
	Log *slog.Logger
}

// Result is the outcome of a finished session.
type Result struct {
	Role   room.Role
	Winner int
	Text   string
	State  *game.GameState
}

// Play runs the room handshake on t and then the duel itself.
func (s *Session) Play(ctx context.Context, t Transport) (Result, error) {
	lobby := NewLobby(t)
	out := s.Out
	if out == nil {
		out = io.Discard
	}

	role := room.RoleHost
	if s.Code == "" {
		code, err := lobby.CreateRoom(ctx)
		if err != nil {
			return Result{}, err
		}
		fmt.Fprintf(out, "Room %s created. Waiting for opponent...\n", code)
	} else {
		r, err := lobby.JoinRoom(ctx, s.Code)
		if err != nil {
			return Result{}, err
		}
		role = r
		fmt.Fprintf(out, "Joined room %s as %s.\n", room.NormalizeCode(s.Code), role)
	}

	start, err := lobby.WaitStart(ctx)
	if err != nil {
		return Result{Role: role}, err
	}
	fmt.Fprintf(out, "Game starting (seed %d). %s moves first.\n", start.Seed, start.CurrentTurn)

	seat := role.Seat()
	peer := NewPeer(t, role, lobby.Pending(), s.Log)
	var controllers [2]game.PlayerController
	controllers[seat] = s.Local(seat)
	controllers[peer.Seat()] = peer

	duel := game.NewDuel(game.DuelConfig{
		Logger:            s.Logger,
		Seed:              start.Seed,
		MaxTurns:          s.MaxTurns,
		HandSize:          s.HandSize,
		TurnTimeout:       s.TurnTimeout,
		PresentationDelay: s.PresentationDelay,
		Sink:              peer,
	}, controllers[0], controllers[1])

	winner, err := duel.Run(ctx)
	res := Result{Role: role, Winner: winner, Text: duel.State.Result, State: duel.State}
	if err != nil {
		return res, fmt.Errorf("duel: %w", err)
	}
	return res, nil
}
