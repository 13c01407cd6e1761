package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/peterkuimelis/elementa/internal/log"
)

// DefaultAttackThreshold is the minimum score an unforced attack needs.
const DefaultAttackThreshold = 5

// SeenCard is what one side can observe about an opposing field card.
type SeenCard struct {
	Revealed bool
	Type     CardType // zero unless Revealed
	Level    int      // zero unless Revealed
}

// BoardView is the information available to one side: its own cards in
// full, the opposing field with unrevealed cards hidden.
type BoardView struct {
	Self       int
	TurnNumber int
	MustAttack bool
	Hand       []*CardToken
	Field      [FieldSlots]*CardToken
	Essences   EssenceSet
	OppField   [FieldSlots]*SeenCard
}

// ObserveBoard builds the view of gs seen by player self.
func ObserveBoard(gs *GameState, self int) BoardView {
	p := gs.Players[self]
	opp := gs.Players[gs.Opponent(self)]
	v := BoardView{
		Self:       self,
		TurnNumber: p.TurnNumber,
		MustAttack: gs.MustAttack && gs.TurnPlayer == self,
		Hand:       append([]*CardToken(nil), p.Hand...),
		Field:      p.Field,
		Essences:   p.Essences,
	}
	for i, c := range opp.Field {
		if c == nil {
			continue
		}
		seen := &SeenCard{Revealed: c.Revealed}
		if c.Revealed {
			seen.Type, seen.Level = c.Type, c.Level
		}
		v.OppField[i] = seen
	}
	return v
}

// OppFieldCount returns the number of opposing field cards.
func (v BoardView) OppFieldCount() int {
	n := 0
	for _, c := range v.OppField {
		if c != nil {
			n++
		}
	}
	return n
}

// Decision is the AI's pick expressed in slots.
type Decision struct {
	Type   ActionType
	CardID string // hand card for ActionPlayCard
	Slot   int
	Target int
}

// AIController is the scripted opponent: fuse, then attack, then play,
// then pass.
type AIController struct {
	Player    int
	Threshold int
	rng       *rand.Rand
}

// NewAIController creates an AI for the given seat. A zero seed picks a
// time-based one; threshold <= 0 uses DefaultAttackThreshold.
func NewAIController(player int, seed int64, threshold int) *AIController {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if threshold <= 0 {
		threshold = DefaultAttackThreshold
	}
	return &AIController{Player: player, Threshold: threshold, rng: rand.New(rand.NewSource(seed))}
}

// ChooseAction implements PlayerController.
func (ai *AIController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	if err := ctx.Err(); err != nil {
		return Action{}, err
	}
	if !state.ActionTaken {
		d := ai.Decide(ObserveBoard(state, ai.Player))
		if a, ok := findAction(actions, d); ok {
			return a, nil
		}
	}
	for _, a := range actions {
		if a.Type == ActionPass {
			return a, nil
		}
	}
	return actions[0], nil
}

// Notify implements PlayerController.
func (ai *AIController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

func findAction(actions []Action, d Decision) (Action, bool) {
	for _, a := range actions {
		if a.Type != d.Type {
			continue
		}
		switch d.Type {
		case ActionPass:
			return a, true
		case ActionPlayCard:
			if a.Card != nil && a.Card.ID == d.CardID && a.Slot == d.Slot {
				return a, true
			}
		case ActionDirectAttack:
			if a.Slot == d.Slot {
				return a, true
			}
		default:
			if a.Slot == d.Slot && a.Target == d.Target {
				return a, true
			}
		}
	}
	return Action{}, false
}

type scoredAttack struct {
	slot, target, score int
}

// Decide runs the priority policy on a board view.
func (ai *AIController) Decide(v BoardView) Decision {
	attackers := ai.attackers(v)
	forced := v.MustAttack && len(attackers) > 0

	if !forced {
		if d, ok := ai.decideFuse(v); ok {
			return d
		}
	}
	if d, ok := ai.decideAttack(v, attackers, forced); ok {
		return d
	}
	if d, ok := ai.decidePlay(v); ok {
		return d
	}
	return Decision{Type: ActionPass, Slot: -1, Target: -1}
}

func (ai *AIController) attackers(v BoardView) []int {
	var slots []int
	for i, c := range v.Field {
		if c != nil && CanAttack(c, v.TurnNumber) {
			slots = append(slots, i)
		}
	}
	return slots
}

func (ai *AIController) decideFuse(v BoardView) (Decision, bool) {
	missingType := !fieldTypes(v.Field).Complete()
	if !missingType && len(v.Hand) > 0 {
		return Decision{}, false
	}
	var best []Decision
	bestLevel := MaxLevel
	for i := 0; i < FieldSlots; i++ {
		for j := i + 1; j < FieldSlots; j++ {
			if !CanFuse(v.Field[i], v.Field[j]) {
				continue
			}
			lvl := v.Field[i].Level
			d := Decision{Type: ActionFuse, Slot: i, Target: j}
			switch {
			case lvl < bestLevel:
				bestLevel = lvl
				best = []Decision{d}
			case lvl == bestLevel:
				best = append(best, d)
			}
		}
	}
	if len(best) == 0 {
		return Decision{}, false
	}
	return best[ai.rng.Intn(len(best))], true
}

func (ai *AIController) decideAttack(v BoardView, attackers []int, forced bool) (Decision, bool) {
	if len(attackers) == 0 {
		return Decision{}, false
	}

	// An empty opposing field is attacked only when the attack is mandatory.
	if v.OppFieldCount() == 0 {
		if !forced {
			return Decision{}, false
		}
		slot := attackers[ai.rng.Intn(len(attackers))]
		return Decision{Type: ActionDirectAttack, Slot: slot, Target: -1}, true
	}

	var best []scoredAttack
	for _, s := range attackers {
		atk := CombatantOf(v.Field[s])
		for t, seen := range v.OppField {
			if seen == nil || !seen.Revealed {
				continue
			}
			sc := scoredAttack{slot: s, target: t, score: ScoreAttack(atk, Combatant{Type: seen.Type, Level: seen.Level})}
			switch {
			case len(best) == 0 || sc.score > best[0].score:
				best = []scoredAttack{sc}
			case sc.score == best[0].score:
				best = append(best, sc)
			}
		}
	}

	if len(best) > 0 && (best[0].score >= ai.Threshold || (forced && best[0].score > 0)) {
		pick := best[ai.rng.Intn(len(best))]
		return Decision{Type: ActionAttack, Slot: pick.slot, Target: pick.target}, true
	}
	if !forced {
		return Decision{}, false
	}

	var all []scoredAttack
	for _, s := range attackers {
		for t, seen := range v.OppField {
			if seen != nil {
				all = append(all, scoredAttack{slot: s, target: t})
			}
		}
	}
	pick := all[ai.rng.Intn(len(all))]
	return Decision{Type: ActionAttack, Slot: pick.slot, Target: pick.target}, true
}

// ScoreAttack rates an attack: positive when the attacker wins, negative
// otherwise and more so when the attacker would be destroyed.
func ScoreAttack(atk, def Combatant) int {
	switch Resolve(atk, def).Winner {
	case WinnerAttacker:
		return 10 + 2*def.Level
	case WinnerDefender:
		return -10 - 3*atk.Level
	default:
		return -10
	}
}

func (ai *AIController) decidePlay(v BoardView) (Decision, bool) {
	var free []int
	for i, c := range v.Field {
		if c == nil {
			free = append(free, i)
		}
	}
	if len(free) == 0 || len(v.Hand) == 0 {
		return Decision{}, false
	}

	present := fieldTypes(v.Field)
	card := v.Hand[0]
	for _, c := range v.Hand {
		if !present.Has(c.Type) {
			card = c
			break
		}
	}
	slot := free[ai.rng.Intn(len(free))]
	return Decision{Type: ActionPlayCard, CardID: card.ID, Slot: slot, Target: -1}, true
}

func fieldTypes(field [FieldSlots]*CardToken) EssenceSet {
	var s EssenceSet
	for _, c := range field {
		if c != nil {
			s.Activate(c.Type)
		}
	}
	return s
}
