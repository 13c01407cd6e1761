package game

import "fmt"

// LegalActions returns every action the active side may take right now.
// Once the action is spent the only choice is ending the turn.
func (gs *GameState) LegalActions() []Action {
	if gs.Over || gs.State == StatePreStart {
		return nil
	}
	tp := gs.TurnPlayer
	endTurn := Action{Type: ActionPass, Player: tp, Slot: -1, Target: -1, Desc: "End turn"}
	if gs.ActionTaken {
		return []Action{endTurn}
	}

	attacks := gs.legalAttacks()
	if gs.MustAttack && len(attacks) > 0 {
		return attacks
	}

	p := gs.Players[tp]
	var actions []Action
	actions = append(actions, gs.legalFusions()...)
	actions = append(actions, attacks...)

	free := p.FreeSlots()
	for _, c := range p.Hand {
		for _, slot := range free {
			actions = append(actions, Action{
				Type:   ActionPlayCard,
				Player: tp,
				Card:   c,
				Slot:   slot,
				Target: -1,
				Desc:   fmt.Sprintf("Play %s to slot %d", c, slot+1),
			})
		}
	}

	endTurn.Desc = "Pass"
	return append(actions, endTurn)
}

// legalAttacks lists every attack the active side could declare.
func (gs *GameState) legalAttacks() []Action {
	tp := gs.TurnPlayer
	p := gs.Players[tp]
	opp := gs.Players[gs.Opponent(tp)]
	direct := opp.FieldCount() == 0

	var actions []Action
	for i, atk := range p.Field {
		if atk == nil || !CanAttack(atk, p.TurnNumber) {
			continue
		}
		if direct {
			actions = append(actions, Action{
				Type:   ActionDirectAttack,
				Player: tp,
				Card:   atk,
				Slot:   i,
				Target: -1,
				Desc:   fmt.Sprintf("Attack directly with %s (slot %d)", atk, i+1),
			})
			continue
		}
		for j, def := range opp.Field {
			if def == nil {
				continue
			}
			actions = append(actions, Action{
				Type:   ActionAttack,
				Player: tp,
				Card:   atk,
				Slot:   i,
				Target: j,
				Desc:   fmt.Sprintf("Attack %s (slot %d) with %s (slot %d)", def.DisplayString(tp), j+1, atk, i+1),
			})
		}
	}
	return actions
}

// legalFusions lists every fusable pair on the active side's field.
func (gs *GameState) legalFusions() []Action {
	tp := gs.TurnPlayer
	p := gs.Players[tp]
	var actions []Action
	for i := 0; i < FieldSlots; i++ {
		for j := i + 1; j < FieldSlots; j++ {
			if !CanFuse(p.Field[i], p.Field[j]) {
				continue
			}
			actions = append(actions, Action{
				Type:   ActionFuse,
				Player: tp,
				Card:   p.Field[i],
				Slot:   i,
				Target: j,
				Desc:   fmt.Sprintf("Fuse %s (slots %d+%d)", p.Field[i], i+1, j+1),
			})
		}
	}
	return actions
}
