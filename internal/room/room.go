package room

import "time"

// MaxPlayers is the number of participants a room admits.
const MaxPlayers = 2

// Role is a participant's seat in a room.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Seat maps a role to the engine's player index.
func (r Role) Seat() int {
	if r == RoleGuest {
		return 1
	}
	return 0
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleGuest {
		return RoleHost
	}
	return RoleGuest
}

// Participant is one connection seated in a room.
type Participant struct {
	ConnID string `json:"connectionId"`
	Role   Role   `json:"role"`
}

// Room is a two-seat session identified by a numeric code.
type Room struct {
	Code      string        `json:"code"`
	Players   []Participant `json:"players"`
	CreatedAt time.Time     `json:"createdAt"`
	Seed      int64         `json:"-"`
}

// Full reports whether the room has no free seat.
func (r *Room) Full() bool {
	return len(r.Players) >= MaxPlayers
}

// Find returns the participant with the given connection, if seated.
func (r *Room) Find(connID string) (Participant, bool) {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p, true
		}
	}
	return Participant{}, false
}

// ConnIDs lists the connections seated in the room.
func (r *Room) ConnIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ConnID)
	}
	return ids
}

// ByRole returns the participant holding role.
func (r *Room) ByRole(role Role) (Participant, bool) {
	for _, p := range r.Players {
		if p.Role == role {
			return p, true
		}
	}
	return Participant{}, false
}

func (r *Room) clone() *Room {
	cp := *r
	cp.Players = append([]Participant(nil), r.Players...)
	return &cp
}
