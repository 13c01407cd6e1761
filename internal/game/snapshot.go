package game

import (
	"encoding/json"
	"fmt"
)

// PlayerSnapshot is the serializable form of a Player.
type PlayerSnapshot struct {
	Index     int                    `json:"index"`
	Deck      []*CardToken           `json:"deck"` // bottom first
	Hand      []*CardToken           `json:"hand"`
	Field     [FieldSlots]*CardToken `json:"field"`
	Graveyard []GraveToken           `json:"graveyard"`
	Essences  []CardType             `json:"essences"`

	TurnsSinceLastAttack int `json:"turnsSinceLastAttack"`
	InactiveTurns        int `json:"inactiveTurns"`
	TurnNumber           int `json:"turnNumber"`
}

// Snapshot is a complete copy of a GameState, used to resynchronize peers.
type Snapshot struct {
	Players     [2]PlayerSnapshot `json:"players"`
	Turn        int               `json:"turn"`
	TurnPlayer  int               `json:"turnPlayer"`
	State       TurnState         `json:"state"`
	ActionTaken bool              `json:"actionTaken"`
	Attacked    bool              `json:"attacked"`
	MustAttack  bool              `json:"mustAttack"`
	HandSize    int               `json:"handSize"`
	MaxTurns    int               `json:"maxTurns"`
	Seed        int64             `json:"seed"`
	Over        bool              `json:"over"`
	Winner      int               `json:"winner"`
	Reason      string            `json:"reason,omitempty"`
}

func cloneCards(cards []*CardToken) []*CardToken {
	out := make([]*CardToken, len(cards))
	for i, c := range cards {
		out[i] = c.clone()
	}
	return out
}

// Snapshot captures the full state. The result shares nothing with gs.
func (gs *GameState) Snapshot() Snapshot {
	s := Snapshot{
		Turn:        gs.Turn,
		TurnPlayer:  gs.TurnPlayer,
		State:       gs.State,
		ActionTaken: gs.ActionTaken,
		Attacked:    gs.Attacked,
		MustAttack:  gs.MustAttack,
		HandSize:    gs.HandSize,
		MaxTurns:    gs.MaxTurns,
		Seed:        gs.Seed,
		Over:        gs.Over,
		Winner:      gs.Winner,
		Reason:      gs.Reason,
	}
	for i, p := range gs.Players {
		ps := PlayerSnapshot{
			Index:                p.Index,
			Deck:                 cloneCards(p.Deck.cards),
			Hand:                 cloneCards(p.Hand),
			Graveyard:            append([]GraveToken{}, p.Graveyard...),
			Essences:             p.Essences.Types(),
			TurnsSinceLastAttack: p.TurnsSinceLastAttack,
			InactiveTurns:        p.InactiveTurns,
			TurnNumber:           p.TurnNumber,
		}
		for j, c := range p.Field {
			ps.Field[j] = c.clone()
		}
		s.Players[i] = ps
	}
	return s
}

// Restore replaces the state with s. Event hooks are kept.
func (gs *GameState) Restore(s Snapshot) error {
	for i, ps := range s.Players {
		if ps.Index != i {
			return fmt.Errorf("snapshot player %d has index %d", i, ps.Index)
		}
	}
	if s.TurnPlayer != 0 && s.TurnPlayer != 1 {
		return fmt.Errorf("snapshot turn player %d out of range", s.TurnPlayer)
	}

	for i, ps := range s.Players {
		p := &Player{
			Index:                i,
			Deck:                 &Deck{Owner: i, cards: cloneCards(ps.Deck)},
			Hand:                 cloneCards(ps.Hand),
			Graveyard:            append([]GraveToken{}, ps.Graveyard...),
			Essences:             EssencesOf(ps.Essences...),
			TurnsSinceLastAttack: ps.TurnsSinceLastAttack,
			InactiveTurns:        ps.InactiveTurns,
			TurnNumber:           ps.TurnNumber,
		}
		for j, c := range ps.Field {
			p.Field[j] = c.clone()
		}
		gs.Players[i] = p
	}
	gs.Turn = s.Turn
	gs.TurnPlayer = s.TurnPlayer
	gs.State = s.State
	gs.ActionTaken = s.ActionTaken
	gs.Attacked = s.Attacked
	gs.MustAttack = s.MustAttack
	gs.HandSize = s.HandSize
	gs.MaxTurns = s.MaxTurns
	gs.Seed = s.Seed
	gs.Over = s.Over
	gs.Winner = s.Winner
	gs.Reason = s.Reason
	gs.Result = ""
	if gs.Over {
		gs.Result = fmt.Sprintf("P%d wins (%s)", gs.Winner+1, gs.Reason)
		if gs.Winner < 0 {
			gs.Result = fmt.Sprintf("Draw (%s)", gs.Reason)
		}
	}
	return nil
}

// MarshalSnapshot encodes the current state as JSON.
func (gs *GameState) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(gs.Snapshot())
}

// RestoreJSON decodes a JSON snapshot and restores it.
func (gs *GameState) RestoreJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return gs.Restore(s)
}
