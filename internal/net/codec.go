package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peterkuimelis/elementa/internal/game"
)

var (
	ErrMalformedEvent = errors.New("malformed game event")
	ErrUnknownMessage = errors.New("unknown message type")
)

// Game event kinds carried in the "type" field of a game_event payload.
const (
	EventPlayCard      = "play_card"
	EventFuse          = "fuse"
	EventAttack        = "attack"
	EventDirectAttack  = "direct_attack"
	EventPass          = "pass"
	EventResyncRequest = "resync_request"
	EventSnapshot      = "snapshot"
)

// GameEventPayload is the body of a game_event. Epoch counts the snapshots
// the host has issued; events from an older epoch are stale.
type GameEventPayload struct {
	Type  string `json:"type"`
	Actor int    `json:"actor"`
	Epoch int    `json:"epoch"`

	// play_card
	Card       *game.CardRef `json:"card,omitempty"`
	FieldIndex int           `json:"fieldIndex"`
	// fuse (second operand) and attack (defender)
	TargetIndex int `json:"targetIndex"`

	TimedOut bool           `json:"timedOut,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
}

// EncodeEvent packages a reducer event for the wire.
func EncodeEvent(ev game.Event, epoch int) GameEventPayload {
	p := GameEventPayload{Actor: ev.Actor(), Epoch: epoch, FieldIndex: -1, TargetIndex: -1}
	switch e := ev.(type) {
	case game.PlayCard:
		card := e.Card
		p.Type = EventPlayCard
		p.Card = &card
		p.FieldIndex = e.Slot
	case game.Fuse:
		p.Type = EventFuse
		p.FieldIndex = e.SlotA
		p.TargetIndex = e.SlotB
	case game.Attack:
		p.Type = EventAttack
		if e.Direct {
			p.Type = EventDirectAttack
		}
		p.FieldIndex = e.AttackerSlot
		p.TargetIndex = e.DefenderSlot
	case game.Pass:
		p.Type = EventPass
		p.TimedOut = e.TimedOut
	}
	return p
}

// DecodeEvent turns a payload back into a reducer event.
func DecodeEvent(p GameEventPayload) (game.Event, error) {
	if p.Actor != 0 && p.Actor != 1 {
		return nil, fmt.Errorf("%w: actor %d", ErrMalformedEvent, p.Actor)
	}
	switch p.Type {
	case EventPlayCard:
		if p.Card == nil {
			return nil, fmt.Errorf("%w: play_card without card", ErrMalformedEvent)
		}
		return game.PlayCard{Player: p.Actor, Card: *p.Card, Slot: p.FieldIndex}, nil
	case EventFuse:
		return game.Fuse{Player: p.Actor, SlotA: p.FieldIndex, SlotB: p.TargetIndex}, nil
	case EventAttack:
		return game.Attack{Player: p.Actor, AttackerSlot: p.FieldIndex, DefenderSlot: p.TargetIndex}, nil
	case EventDirectAttack:
		return game.Attack{Player: p.Actor, AttackerSlot: p.FieldIndex, DefenderSlot: -1, Direct: true}, nil
	case EventPass:
		return game.Pass{Player: p.Actor, TimedOut: p.TimedOut}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, p.Type)
	}
}

// MarshalEvent encodes ev as a game_event body.
func MarshalEvent(ev game.Event, epoch int) (json.RawMessage, error) {
	return json.Marshal(EncodeEvent(ev, epoch))
}

// UnmarshalPayload decodes a game_event body.
func UnmarshalPayload(data json.RawMessage) (GameEventPayload, error) {
	var p GameEventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if p.Type == "" {
		return p, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	return p, nil
}
