package game

import (
	"fmt"

	"github.com/peterkuimelis/elementa/internal/log"
)

// Event is a state transition request. The set of events is closed: PlayCard,
// Fuse, Attack and Pass.
type Event interface {
	Actor() int
	isEvent()
}

// CardRef identifies a card and the identity the sender believes it has.
type CardRef struct {
	ID    string   `json:"id"`
	Type  CardType `json:"type"`
	Level int      `json:"level"`
}

func refOf(c *CardToken) CardRef {
	if c == nil {
		return CardRef{}
	}
	return CardRef{ID: c.ID, Type: c.Type, Level: c.Level}
}

// PlayCard moves a hand card into an empty field slot.
type PlayCard struct {
	Player int
	Card   CardRef
	Slot   int
}

// Fuse merges the cards in SlotA and SlotB. The result occupies SlotA.
type Fuse struct {
	Player int
	SlotA  int
	SlotB  int
}

// Attack sends the card in AttackerSlot against the opposing DefenderSlot,
// or straight at an empty opposing field when Direct is set.
type Attack struct {
	Player       int
	AttackerSlot int
	DefenderSlot int
	Direct       bool
}

// Pass ends the active side's turn, with or without a prior action.
type Pass struct {
	Player   int
	TimedOut bool
}

func (e PlayCard) Actor() int { return e.Player }
func (e Fuse) Actor() int     { return e.Player }
func (e Attack) Actor() int   { return e.Player }
func (e Pass) Actor() int     { return e.Player }

func (PlayCard) isEvent() {}
func (Fuse) isEvent()     {}
func (Attack) isEvent()   {}
func (Pass) isEvent()     {}

// Apply validates ev against the current state and performs it. On error the
// state is unchanged.
func (gs *GameState) Apply(ev Event) error {
	if gs.Over {
		return ErrGameOver
	}
	if gs.State == StatePreStart {
		return fmt.Errorf("match not started")
	}
	if ev.Actor() != gs.TurnPlayer {
		return fmt.Errorf("%w: P%d acted during P%d's turn", ErrNotYourTurn, ev.Actor()+1, gs.TurnPlayer+1)
	}

	switch e := ev.(type) {
	case PlayCard:
		return gs.applyPlay(e)
	case Fuse:
		return gs.applyFuse(e)
	case Attack:
		return gs.applyAttack(e)
	case Pass:
		return gs.applyPass(e)
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

// checkBudget rejects non-attack actions once the action is spent or while
// the mandatory-attack lock holds.
func (gs *GameState) checkBudget(attacking bool) error {
	if gs.ActionTaken {
		return ErrActionSpent
	}
	if !attacking && gs.attackLocked() {
		return ErrMustAttack
	}
	return nil
}

// attackLocked reports whether the active side must attack and can.
func (gs *GameState) attackLocked() bool {
	return gs.MustAttack && len(gs.legalAttacks()) > 0
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < FieldSlots
}

func (gs *GameState) applyPlay(e PlayCard) error {
	if err := gs.checkBudget(false); err != nil {
		return err
	}
	p := gs.Players[e.Player]
	if !validSlot(e.Slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, e.Slot)
	}
	if p.Field[e.Slot] != nil {
		return fmt.Errorf("%w: slot %d holds %s", ErrSlotOccupied, e.Slot+1, p.Field[e.Slot])
	}
	idx := p.HandIndex(e.Card.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, e.Card.ID)
	}
	if c := p.Hand[idx]; c.Type != e.Card.Type || c.Level != e.Card.Level {
		return fmt.Errorf("%w: card %s is %s, not %s", ErrDesync, c.ID, c, ArchetypeFor(e.Card.Type, e.Card.Level).Name)
	}

	card := p.RemoveFromHand(idx)
	p.PlaceCard(card, e.Slot)
	gs.ActionTaken = true
	gs.emit(log.NewPlayCardEvent(gs.Turn, gs.Phase(), e.Player, card.String(), e.Slot))
	return nil
}

func (gs *GameState) applyFuse(e Fuse) error {
	if err := gs.checkBudget(false); err != nil {
		return err
	}
	p := gs.Players[e.Player]
	if !validSlot(e.SlotA) || !validSlot(e.SlotB) {
		return fmt.Errorf("%w: %d+%d", ErrInvalidSlot, e.SlotA, e.SlotB)
	}
	if e.SlotA == e.SlotB {
		return fmt.Errorf("%w: both operands in slot %d", ErrFusionMismatch, e.SlotA+1)
	}
	result, err := FuseCards(p.Field[e.SlotA], p.Field[e.SlotB])
	if err != nil {
		return err
	}

	p.Field[e.SlotA] = result
	p.Field[e.SlotB] = nil
	gs.ActionTaken = true
	gs.emit(log.NewFuseEvent(gs.Turn, gs.Phase(), e.Player, result.String(), e.SlotA, e.SlotB))
	return nil
}

func (gs *GameState) applyAttack(e Attack) error {
	if err := gs.checkBudget(true); err != nil {
		return err
	}
	p := gs.Players[e.Player]
	opp := gs.Players[gs.Opponent(e.Player)]
	if !validSlot(e.AttackerSlot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, e.AttackerSlot)
	}
	attacker := p.Field[e.AttackerSlot]
	if attacker == nil {
		return fmt.Errorf("%w: attacker slot %d", ErrSlotEmpty, e.AttackerSlot+1)
	}
	if !CanAttack(attacker, p.TurnNumber) {
		return fmt.Errorf("%w: %s", ErrAttackerCooling, attacker)
	}

	if e.Direct {
		if opp.FieldCount() > 0 {
			return ErrFieldNotEmpty
		}
		gs.markAttack(attacker)
		gs.emit(log.NewDirectAttackEvent(gs.Turn, gs.Phase(), e.Player, attacker.String()))
		gs.registerAttack(p, attacker)
		if p.Essences.Activate(attacker.Type) {
			gs.emit(log.NewEssenceEvent(gs.Turn, gs.Phase(), e.Player, attacker.Type.String(), p.Essences.Count()))
		}
		return nil
	}

	if !validSlot(e.DefenderSlot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, e.DefenderSlot)
	}
	defender := opp.Field[e.DefenderSlot]
	if defender == nil {
		return fmt.Errorf("%w: slot %d", ErrNoTarget, e.DefenderSlot+1)
	}

	gs.markAttack(attacker)
	defender.Revealed = true
	gs.emit(log.NewAttackDeclareEvent(gs.Turn, gs.Phase(), e.Player, attacker.String(), defender.String()))

	out := Resolve(CombatantOf(attacker), CombatantOf(defender))
	gs.emit(log.NewCombatResultEvent(gs.Turn, gs.Phase(), e.Player, fmt.Sprintf("%s (%s)", out.Winner, out.Reason)))
	gs.registerAttack(p, attacker)

	switch out.Winner {
	case WinnerAttacker:
		n := opp.SendToGraveyard(e.DefenderSlot)
		gs.emit(log.NewDestroyEvent(gs.Turn, gs.Phase(), opp.Index, defender.String(), n))
	case WinnerDefender:
		n := p.SendToGraveyard(e.AttackerSlot)
		gs.emit(log.NewDestroyEvent(gs.Turn, gs.Phase(), p.Index, attacker.String(), n))
	}
	return nil
}

func (gs *GameState) markAttack(attacker *CardToken) {
	attacker.Revealed = true
	gs.ActionTaken = true
	gs.Attacked = true
}

func (gs *GameState) registerAttack(p *Player, attacker *CardToken) {
	if RegisterAttack(attacker, p.TurnNumber) {
		gs.emit(log.NewCooldownEvent(gs.Turn, gs.Phase(), p.Index, attacker.String(), attacker.Cooldown.BlockedUntilOwnTurn))
	}
}

func (gs *GameState) applyPass(e Pass) error {
	if !e.TimedOut && !gs.ActionTaken && gs.attackLocked() {
		return ErrMustAttack
	}
	if !gs.ActionTaken {
		if e.TimedOut {
			gs.emit(log.NewTimeoutEvent(gs.Turn, gs.Phase(), e.Player))
		} else {
			gs.emit(log.NewPassEvent(gs.Turn, gs.Phase(), e.Player))
		}
	}
	if !gs.endTurn(false) {
		gs.advance(gs.Opponent(e.Player))
	}
	return nil
}

// endTurn does the exit bookkeeping for the active side and reports whether
// the match ended.
func (gs *GameState) endTurn(skipped bool) bool {
	p := gs.CurrentPlayer()
	if gs.ActionTaken {
		p.InactiveTurns = 0
	} else {
		p.InactiveTurns++
	}
	switch {
	case skipped, gs.Attacked:
		p.TurnsSinceLastAttack = 0
	default:
		p.TurnsSinceLastAttack++
	}

	if v := EvaluateVictory(gs.Players); v.Decided {
		gs.finish(v.Winner, v.Reason)
		return true
	}
	if gs.MaxTurns > 0 && gs.Turn >= gs.MaxTurns {
		gs.finish(-1, ReasonTurnLimit)
		return true
	}
	return false
}

// advance hands the turn to next, resolving any auto-skipped turns.
func (gs *GameState) advance(next int) {
	for {
		if !gs.beginTurn(next) {
			return
		}
		if gs.endTurn(true) {
			return
		}
		next = gs.Opponent(next)
	}
}

// beginTurn enters next's turn and reports whether it is auto-skipped: a
// forced attack with no card on the field to attack with.
func (gs *GameState) beginTurn(next int) bool {
	gs.Turn++
	gs.TurnPlayer = next
	gs.State = stateFor(next)
	gs.ActionTaken = false
	gs.Attacked = false

	p := gs.Players[next]
	p.TurnNumber++
	gs.MustAttack = p.TurnsSinceLastAttack >= AttackStreakLimit
	for _, c := range p.Field {
		ExpireCooldown(c, p.TurnNumber)
	}

	gs.emit(log.NewTurnEvent(gs.Turn, gs.Phase(), next, p.TurnNumber))
	for _, c := range p.RefillHand(gs.HandSize) {
		gs.emit(log.NewDrawEvent(gs.Turn, gs.Phase(), next, c.String()))
	}

	if gs.MustAttack && p.FieldCount() == 0 {
		gs.emit(log.NewAutoSkipEvent(gs.Turn, gs.Phase(), next))
		return true
	}
	return false
}
