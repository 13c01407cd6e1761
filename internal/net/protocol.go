package net

import (
	"encoding/json"

	"github.com/peterkuimelis/elementa/internal/room"
)

// Message types for the JSON room protocol over websocket.

// Client → relay.
const (
	MsgCreateRoom = "create_room"
	MsgJoinRoom   = "join_room"
	MsgGameEvent  = "game_event"
	MsgEndTurn    = "end_turn"
)

// Relay → client. create_room and join_room replies reuse the request type.
const (
	MsgPlayerJoined = "player_joined"
	MsgGameStart    = "game_start"
	MsgTurnChanged  = "turn_changed"
	MsgPlayerLeft   = "player_left"
	MsgError        = "error"
)

// ClientMessage is the envelope for all client-to-relay messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join_room"
	Code string `json:"code,omitempty"`

	// For "game_event"; relayed verbatim
	Event json.RawMessage `json:"event,omitempty"`

	// For "end_turn"
	CurrentTurn room.Role `json:"currentTurn,omitempty"`
	TurnNumber  int       `json:"turnNumber,omitempty"`
}

// ServerMessage is the envelope for all relay-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "create_room" / "join_room" replies
	Success *bool     `json:"success,omitempty"`
	Code    string    `json:"code,omitempty"`
	Role    room.Role `json:"role,omitempty"`
	Message string    `json:"message,omitempty"`

	// For "player_joined"
	Players  int   `json:"players,omitempty"`
	CanStart *bool `json:"canStart,omitempty"`

	// For "game_start" and "turn_changed"
	CurrentTurn room.Role `json:"currentTurn,omitempty"`
	HostID      string    `json:"hostId,omitempty"`
	GuestID     string    `json:"guestId,omitempty"`
	Seed        int64     `json:"seed,omitempty"`
	TurnNumber  int       `json:"turnNumber,omitempty"`

	// For "game_event"
	Event json.RawMessage `json:"event,omitempty"`
}

// Accepted is a successful create_room or join_room reply.
func Accepted(kind, code string, role room.Role) ServerMessage {
	ok := true
	return ServerMessage{Type: kind, Success: &ok, Code: code, Role: role}
}

// Rejected is a failed create_room or join_room reply. It always carries
// an explicit "success": false.
func Rejected(kind string, err error) ServerMessage {
	ok := false
	return ServerMessage{Type: kind, Success: &ok, Message: err.Error()}
}

// PlayerJoined reports the room's occupancy; canStart is always present.
func PlayerJoined(players int, canStart bool) ServerMessage {
	return ServerMessage{Type: MsgPlayerJoined, Players: players, CanStart: &canStart}
}

// OK reports whether a reply carries "success": true.
func (m ServerMessage) OK() bool {
	return m.Success != nil && *m.Success
}
