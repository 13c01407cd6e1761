package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/peterkuimelis/elementa/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of actions.
// Used in tests to deterministically drive the game.
type ScriptedController struct {
	t       *testing.T
	name    string
	actions []ScriptedAction
	pos     int
}

type ScriptedAction struct {
	// Match by ActionType; picks the first action of this type
	Type ActionType
	// Optional: match by card name as well
	CardName string
	// Optional: match by slot and target (-1 = any)
	Slot   int
	Target int
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddPlay(cardName string, slot int) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionPlayCard, CardName: cardName, Slot: slot, Target: -1})
	return sc
}

func (sc *ScriptedController) AddFuse(slotA, slotB int) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionFuse, Slot: slotA, Target: slotB})
	return sc
}

func (sc *ScriptedController) AddAttack(attackerSlot, defenderSlot int) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionAttack, Slot: attackerSlot, Target: defenderSlot})
	return sc
}

func (sc *ScriptedController) AddDirectAttack(attackerSlot int) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionDirectAttack, Slot: attackerSlot, Target: -1})
	return sc
}

func (sc *ScriptedController) AddPass() *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionPass, Slot: -1, Target: -1})
	return sc
}

func (sc *ScriptedController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	if sc.pos >= len(sc.actions) {
		return defaultAction(actions), nil
	}

	scripted := sc.actions[sc.pos]
	for _, a := range actions {
		if a.Type != scripted.Type {
			continue
		}
		if scripted.CardName != "" && (a.Card == nil || a.Card.String() != scripted.CardName) {
			continue
		}
		if scripted.Slot >= 0 && a.Slot != scripted.Slot {
			continue
		}
		if scripted.Target >= 0 && a.Target != scripted.Target {
			continue
		}
		sc.pos++
		return a, nil
	}

	sc.t.Logf("[%s] scripted %s not available on turn %d, passing", sc.name, scripted.Type, state.Turn)
	return defaultAction(actions), nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

// defaultAction picks Pass if offered, else the first action.
func defaultAction(actions []Action) Action {
	for _, a := range actions {
		if a.Type == ActionPass {
			return a
		}
	}
	return actions[0]
}

// blockingController never answers until its context ends.
type blockingController struct{}

func (blockingController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	<-ctx.Done()
	return Action{}, ctx.Err()
}

func (blockingController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

// recordingSink collects every locally applied event.
type recordingSink struct {
	events []Event
}

func (r *recordingSink) Publish(ctx context.Context, state *GameState, ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

// --- Test deck helpers ---

// deckOf builds a composition from archetype names; index 0 is drawn first.
func deckOf(t *testing.T, names ...string) []Archetype {
	t.Helper()
	defs := make([]Archetype, 0, len(names))
	for _, n := range names {
		a, err := LookupArchetype(n)
		if err != nil {
			t.Fatal(err)
		}
		defs = append(defs, a)
	}
	return defs
}

// paddedDeck puts top on top of a deck filled up to size with filler.
func paddedDeck(t *testing.T, filler string, size int, top ...string) []Archetype {
	t.Helper()
	defs := deckOf(t, top...)
	pad, err := LookupArchetype(filler)
	if err != nil {
		t.Fatal(err)
	}
	for len(defs) < size {
		defs = append(defs, pad)
	}
	return defs
}

// newStartedState builds an unshuffled, started state whose events go to
// the returned logger.
func newStartedState(t *testing.T, decks [2][]Archetype) (*GameState, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	gs := NewGameState(Setup{Seed: 1, Decks: decks, NoShuffle: true})
	gs.OnEvent = logger.Log
	if err := gs.Start(); err != nil {
		t.Fatal(err)
	}
	return gs, logger
}

var testCardSeq int

// put places a fresh card directly on a player's field.
func put(gs *GameState, player, slot int, t CardType, level int) *CardToken {
	testCardSeq++
	c := &CardToken{ID: fmt.Sprintf("test-%d", testCardSeq), Type: t, Level: level, Owner: player}
	gs.Players[player].Field[slot] = c
	return c
}

// mustApply applies ev and fails the test on error.
func mustApply(t *testing.T, gs *GameState, ev Event) {
	t.Helper()
	if err := gs.Apply(ev); err != nil {
		t.Fatalf("apply %#v: %v", ev, err)
	}
}

// playFirst plays the first hand card of the active side into slot and ends the turn.
func playFirst(t *testing.T, gs *GameState, slot int) {
	t.Helper()
	p := gs.CurrentPlayer()
	mustApply(t, gs, PlayCard{Player: p.Index, Card: refOf(p.Hand[0]), Slot: slot})
	mustApply(t, gs, Pass{Player: p.Index})
}

// runDuelToCompletion runs a duel and returns the logger for inspection.
func runDuelToCompletion(t *testing.T, cfg DuelConfig, p0, p1 PlayerController) (*Duel, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 100 // reasonable default for tests
	}

	duel := NewDuel(cfg, p0, p1)

	winner, err := duel.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Duel error: %v", err)
	}

	t.Logf("Duel result: winner=%d (%s)", winner, duel.State.Result)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	return duel, logger
}
