package net

import (
	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/log"
)

// EventView is a simplified game event for the client.
type EventView struct {
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

func EventViewOf(e log.GameEvent) EventView {
	return EventView{
		Turn:    e.Turn,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}

// ActionView is a numbered action choice.
type ActionView struct {
	Index int    `json:"index"`
	Desc  string `json:"desc"`
}

func ActionViews(actions []game.Action) []ActionView {
	views := make([]ActionView, len(actions))
	for i, a := range actions {
		views[i] = ActionView{Index: i, Desc: a.String()}
	}
	return views
}

// StateView is the game state from one player's perspective.
type StateView struct {
	You         PlayerView `json:"you"`
	Opponent    PlayerView `json:"opponent"`
	Turn        int        `json:"turn"`
	Phase       string     `json:"phase"`
	IsYourTurn  bool       `json:"is_your_turn"`
	MustAttack  bool       `json:"must_attack,omitempty"`
	ActionTaken bool       `json:"action_taken,omitempty"`
	Over        bool       `json:"over,omitempty"`
	Result      string     `json:"result,omitempty"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	HandCount      int                       `json:"hand_count"`
	Hand           []string                  `json:"hand,omitempty"` // card names (only for "you")
	Field          [game.FieldSlots]SlotView `json:"field"`
	GraveyardCount int                       `json:"graveyard_count"`
	DeckCount      int                       `json:"deck_count"`
	Essences       []string                  `json:"essences"`
	InactiveTurns  int                       `json:"inactive_turns"`
	IdleStreak     int                       `json:"idle_streak"`
}

// SlotView describes a single field slot.
type SlotView struct {
	Empty    bool   `json:"empty,omitempty"`
	FaceDown bool   `json:"face_down,omitempty"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Level    int    `json:"level,omitempty"`
	Resting  bool   `json:"resting,omitempty"`
}

// BuildStateView creates a StateView from the perspective of the given player.
func BuildStateView(state *game.GameState, player int) *StateView {
	me := player
	opp := state.Opponent(me)

	sv := &StateView{
		Turn:       state.Turn,
		Phase:      state.Phase(),
		IsYourTurn: state.TurnPlayer == me && !state.Over,
		Over:       state.Over,
		Result:     state.Result,
	}
	if sv.IsYourTurn {
		sv.MustAttack = state.MustAttack
		sv.ActionTaken = state.ActionTaken
	}

	sv.You = buildPlayerView(state, me, me)
	for _, c := range state.Players[me].Hand {
		sv.You.Hand = append(sv.You.Hand, c.String())
	}
	sv.Opponent = buildPlayerView(state, opp, me)
	return sv
}

func buildPlayerView(state *game.GameState, side, viewer int) PlayerView {
	p := state.Players[side]
	// cooldowns are shown for the side's current or next own turn
	ownTurn := p.TurnNumber
	if state.TurnPlayer != side {
		ownTurn++
	}
	pv := PlayerView{
		HandCount:      len(p.Hand),
		GraveyardCount: len(p.Graveyard),
		DeckCount:      p.Deck.Len(),
		Essences:       []string{},
		InactiveTurns:  p.InactiveTurns,
		IdleStreak:     p.TurnsSinceLastAttack,
	}
	for _, t := range p.Essences.Types() {
		pv.Essences = append(pv.Essences, t.String())
	}
	for i, c := range p.Field {
		pv.Field[i] = SlotViewOf(c, viewer, ownTurn)
	}
	return pv
}

// SlotViewOf describes a field card as seen by viewer. Unrevealed opposing
// cards show only that the slot is occupied.
func SlotViewOf(c *game.CardToken, viewer, ownTurn int) SlotView {
	if c == nil {
		return SlotView{Empty: true}
	}
	if !c.Revealed && viewer != c.Owner {
		return SlotView{FaceDown: true}
	}
	return SlotView{
		FaceDown: !c.Revealed,
		Name:     c.String(),
		Type:     c.Type.String(),
		Level:    c.Level,
		Resting:  !game.CanAttack(c, ownTurn),
	}
}
