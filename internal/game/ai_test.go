package game

import (
	"context"
	"testing"
)

func fieldOf(cards map[int]*CardToken) [FieldSlots]*CardToken {
	var f [FieldSlots]*CardToken
	for i, c := range cards {
		f[i] = c
	}
	return f
}

func TestScoreAttack(t *testing.T) {
	tests := []struct {
		atk, def Combatant
		want     int
	}{
		{Combatant{Fuego, 1}, Combatant{Planta, 1}, 12},
		{Combatant{Fuego, 3}, Combatant{Agua, 1}, 12},
		{Combatant{Fuego, 1}, Combatant{Agua, 1}, -13},
		{Combatant{Fuego, 2}, Combatant{Agua, 3}, -16},
		{Combatant{Fuego, 1}, Combatant{Luz, 1}, -10},
	}
	for _, tt := range tests {
		if got := ScoreAttack(tt.atk, tt.def); got != tt.want {
			t.Errorf("ScoreAttack(%v, %v) = %d, want %d", tt.atk, tt.def, got, tt.want)
		}
	}
}

func TestAIFusesLowestPair(t *testing.T) {
	ai := NewAIController(0, 1, 0)
	v := BoardView{
		TurnNumber: 3,
		Hand:       []*CardToken{token("h", Luz, 1)},
		Field: fieldOf(map[int]*CardToken{
			0: token("a", Agua, 1),
			1: token("b", Luz, 2),
			2: token("c", Agua, 1),
			3: token("d", Luz, 2),
		}),
	}
	d := ai.Decide(v)
	if d.Type != ActionFuse || d.Slot != 0 || d.Target != 2 {
		t.Errorf("decision = %+v, want fuse of slots 0 and 2", d)
	}
}

func TestAIAttacksRevealedTarget(t *testing.T) {
	ai := NewAIController(0, 1, 0)
	v := BoardView{
		TurnNumber: 2,
		Hand:       []*CardToken{token("h", Agua, 1)},
		Field:      fieldOf(map[int]*CardToken{0: token("a", Fuego, 1)}),
	}
	v.OppField[2] = &SeenCard{Revealed: true, Type: Planta, Level: 1}
	v.OppField[4] = &SeenCard{}

	d := ai.Decide(v)
	if d.Type != ActionAttack || d.Slot != 0 || d.Target != 2 {
		t.Errorf("decision = %+v, want attack 0->2", d)
	}
}

func TestAIPlaysNewTypeInsteadOfBlindAttack(t *testing.T) {
	ai := NewAIController(0, 1, 0)
	v := BoardView{
		TurnNumber: 2,
		Hand:       []*CardToken{token("f", Fuego, 1), token("s", Sombra, 1)},
		Field:      fieldOf(map[int]*CardToken{0: token("a", Fuego, 1)}),
	}
	v.OppField[0] = &SeenCard{}

	d := ai.Decide(v)
	if d.Type != ActionPlayCard || d.CardID != "s" {
		t.Errorf("decision = %+v, want to play the Sombra card", d)
	}
	if d.Slot == 0 {
		t.Error("played onto an occupied slot")
	}
}

func TestAIForcedAttackPicksHiddenTarget(t *testing.T) {
	ai := NewAIController(0, 1, 0)
	v := BoardView{
		TurnNumber: 4,
		MustAttack: true,
		Field:      fieldOf(map[int]*CardToken{3: token("a", Luz, 1)}),
	}
	v.OppField[5] = &SeenCard{}

	d := ai.Decide(v)
	if d.Type != ActionAttack || d.Slot != 3 || d.Target != 5 {
		t.Errorf("decision = %+v, want attack 3->5", d)
	}
}

func TestAIDirectAttacksOnlyWhenForced(t *testing.T) {
	ai := NewAIController(0, 1, 0)
	v := BoardView{
		TurnNumber: 2,
		Hand:       []*CardToken{token("h", Agua, 1)},
		Field:      fieldOf(map[int]*CardToken{1: token("a", Fuego, 1)}),
	}
	for i := 0; i < 20; i++ {
		if d := ai.Decide(v); d.Type != ActionPlayCard || d.CardID != "h" {
			t.Fatalf("unforced: decision = %+v, want play h", d)
		}
	}

	v.Hand = nil
	if d := ai.Decide(v); d.Type != ActionPass {
		t.Errorf("unforced, empty hand: decision = %+v, want pass", d)
	}

	v.MustAttack = true
	if d := ai.Decide(v); d.Type != ActionDirectAttack || d.Slot != 1 || d.Target != -1 {
		t.Errorf("forced: decision = %+v, want direct attack from 1", d)
	}
}

func TestAIPassesWithNothingToDo(t *testing.T) {
	ai := NewAIController(0, 1, 0)
	if d := ai.Decide(BoardView{TurnNumber: 1}); d.Type != ActionPass {
		t.Errorf("decision = %+v, want pass", d)
	}
}

func TestObserveBoardHidesUnrevealed(t *testing.T) {
	gs, _ := newStartedState(t, [2][]Archetype{})
	put(gs, 1, 0, Sombra, 3)
	shown := put(gs, 1, 1, Luz, 2)
	shown.Revealed = true

	v := ObserveBoard(gs, 0)
	if hidden := v.OppField[0]; hidden == nil || hidden.Revealed || hidden.Level != 0 {
		t.Errorf("unrevealed card leaked: %+v", hidden)
	}
	if seen := v.OppField[1]; seen == nil || seen.Type != Luz || seen.Level != 2 {
		t.Errorf("revealed card = %+v", seen)
	}
	if v.OppFieldCount() != 2 {
		t.Errorf("OppFieldCount = %d", v.OppFieldCount())
	}
}

func TestAIChooseActionReturnsLegalAction(t *testing.T) {
	gs, _ := newStartedState(t, [2][]Archetype{})
	ai := NewAIController(0, 1, 0)
	a, err := ai.ChooseAction(context.Background(), gs, gs.LegalActions())
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != ActionPlayCard {
		t.Errorf("chose %s, want a play on an empty board", a)
	}
	if err := gs.Apply(a.Event()); err != nil {
		t.Errorf("AI action rejected: %v", err)
	}
}
