package room

import "encoding/json"

// Notifier delivers room signals to connections. Implementations must not
// call back into the Manager.
type Notifier interface {
	PlayerJoined(connIDs []string, players int, canStart bool)
	GameStart(connIDs []string, hostID, guestID string, seed int64)
	// GameEvent forwards an opaque peer event to a single connection.
	GameEvent(connID string, payload json.RawMessage)
	TurnChanged(connIDs []string, current Role, turnNumber int)
	PlayerLeft(connIDs []string, code string)
}

type nopNotifier struct{}

func (nopNotifier) PlayerJoined([]string, int, bool)          {}
func (nopNotifier) GameStart([]string, string, string, int64) {}
func (nopNotifier) GameEvent(string, json.RawMessage)         {}
func (nopNotifier) TurnChanged([]string, Role, int)           {}
func (nopNotifier) PlayerLeft([]string, string)               {}
