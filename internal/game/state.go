package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/peterkuimelis/elementa/internal/log"
)

const (
	DefaultHandSize = 4
	FieldSlots      = 6
	DefaultMaxTurns = 400

	// AttackStreakLimit is the number of own turns without an attack after
	// which the next turn must attack.
	AttackStreakLimit = 2
)

// Player represents one side's entire state.
type Player struct {
	Index     int
	Deck      *Deck
	Hand      []*CardToken
	Field     [FieldSlots]*CardToken
	Graveyard []GraveToken
	Essences  EssenceSet

	TurnsSinceLastAttack int
	InactiveTurns        int
	TurnNumber           int // own turn counter
}

// DrawCard moves the top card of the deck to the hand. Returns nil if the
// deck is empty.
func (p *Player) DrawCard() *CardToken {
	card := p.Deck.Draw()
	if card == nil {
		return nil
	}
	p.Hand = append(p.Hand, card)
	return card
}

// RefillHand draws until the hand holds size cards or the deck runs out.
func (p *Player) RefillHand(size int) []*CardToken {
	var drawn []*CardToken
	for len(p.Hand) < size {
		card := p.DrawCard()
		if card == nil {
			break
		}
		drawn = append(drawn, card)
	}
	return drawn
}

// HandIndex returns the hand position of the card with the given ID, or -1.
func (p *Player) HandIndex(id string) int {
	for i, c := range p.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes the card at hand index i and returns it.
func (p *Player) RemoveFromHand(i int) *CardToken {
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return card
}

// FreeSlots returns all empty field slot indices.
func (p *Player) FreeSlots() []int {
	var slots []int
	for i, c := range p.Field {
		if c == nil {
			slots = append(slots, i)
		}
	}
	return slots
}

// FieldCards returns all non-nil field cards in slot order.
func (p *Player) FieldCards() []*CardToken {
	var result []*CardToken
	for _, c := range p.Field {
		if c != nil {
			result = append(result, c)
		}
	}
	return result
}

// FieldCount returns the number of occupied field slots.
func (p *Player) FieldCount() int {
	n := 0
	for _, c := range p.Field {
		if c != nil {
			n++
		}
	}
	return n
}

// FieldTypes returns the set of elements present on the field.
func (p *Player) FieldTypes() EssenceSet {
	return fieldTypes(p.Field)
}

// HasAllFieldTypes reports whether all six elements are on the field at once.
func (p *Player) HasAllFieldTypes() bool {
	return p.FieldTypes().Complete()
}

// SlotOf returns the field slot holding the card with the given ID, or -1.
func (p *Player) SlotOf(id string) int {
	for i, c := range p.Field {
		if c != nil && c.ID == id {
			return i
		}
	}
	return -1
}

// PlaceCard puts a card face-down into a field slot.
func (p *Player) PlaceCard(card *CardToken, slot int) {
	p.Field[slot] = card
}

// SendToGraveyard removes a card from the field and decomposes it into
// level-1 graveyard tokens. Returns the number of tokens added.
func (p *Player) SendToGraveyard(slot int) int {
	card := p.Field[slot]
	if card == nil {
		return 0
	}
	p.Field[slot] = nil
	tokens := Decompose(card)
	p.Graveyard = append(p.Graveyard, tokens...)
	return len(tokens)
}

// TokenCount returns the number of level-1 tokens this side owns across
// deck, hand, field and graveyard, a level-n card weighing 2^(n-1). It
// never changes during a match.
func (p *Player) TokenCount() int {
	n := len(p.Graveyard)
	for _, c := range p.Deck.cards {
		n += c.Weight()
	}
	for _, c := range p.Hand {
		n += c.Weight()
	}
	for _, c := range p.Field {
		if c != nil {
			n += c.Weight()
		}
	}
	return n
}

// GameState holds the full state of a match. It is mutated only through
// Start, Apply and Abandon.
type GameState struct {
	Players    [2]*Player
	Turn       int // global turn counter
	TurnPlayer int
	State      TurnState

	ActionTaken bool
	Attacked    bool
	MustAttack  bool

	HandSize int
	MaxTurns int
	Seed     int64

	Over   bool
	Winner int // -1 while undecided or on a draw
	Reason string
	Result string

	// OnEvent receives every event the state emits.
	OnEvent func(log.GameEvent)

	rng       *rand.Rand
	noShuffle bool
}

// Setup describes how to build a match.
type Setup struct {
	Seed      int64          // 0 picks a time-based seed
	Decks     [2][]Archetype // nil entries use the standard deck
	NoShuffle bool           // keep deck order (for tests)
	HandSize  int
	MaxTurns  int
}

// NewGameState builds both decks from the setup. Two states built from the
// same setup are identical, card IDs included.
func NewGameState(s Setup) *GameState {
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	handSize := s.HandSize
	if handSize <= 0 {
		handSize = DefaultHandSize
	}
	maxTurns := s.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}

	rng := rand.New(rand.NewSource(seed))
	ids := SeededIDs(rng)

	gs := &GameState{
		HandSize:  handSize,
		MaxTurns:  maxTurns,
		Seed:      seed,
		Winner:    -1,
		State:     StatePreStart,
		rng:       rng,
		noShuffle: s.NoShuffle,
	}
	for i := 0; i < 2; i++ {
		defs := s.Decks[i]
		if defs == nil {
			defs = StandardDeck()
		}
		gs.Players[i] = &Player{Index: i, Deck: NewDeck(i, defs, ids)}
	}
	return gs
}

// Opponent returns the other player index.
func (gs *GameState) Opponent(player int) int {
	return 1 - player
}

// CurrentPlayer returns the active side.
func (gs *GameState) CurrentPlayer() *Player {
	return gs.Players[gs.TurnPlayer]
}

// Phase is the label used on emitted events.
func (gs *GameState) Phase() string {
	return gs.State.String()
}

// Start shuffles both decks, deals the opening hands and begins turn 1 for
// player 0.
func (gs *GameState) Start() error {
	if gs.State != StatePreStart {
		return fmt.Errorf("match already started")
	}
	for _, p := range gs.Players {
		if !gs.noShuffle {
			p.Deck.Shuffle(gs.rng)
			gs.emit(log.NewShuffleEvent(p.Index, p.Deck.Len()))
		}
	}
	for i := 0; i < gs.HandSize; i++ {
		for _, p := range gs.Players {
			p.DrawCard()
		}
	}
	gs.advance(0)
	return nil
}

// Abandon ends the match in favour of the side that stayed.
func (gs *GameState) Abandon(player int) {
	if gs.Over {
		return
	}
	gs.emit(log.NewAbandonEvent(gs.Turn, gs.Phase(), player))
	gs.finish(gs.Opponent(player), ReasonAbandon)
}

func (gs *GameState) emit(e log.GameEvent) {
	if gs.OnEvent != nil {
		gs.OnEvent(e)
	}
}

func (gs *GameState) finish(winner int, reason string) {
	gs.Over = true
	gs.Winner = winner
	gs.Reason = reason
	gs.State = StateGameOver
	if winner < 0 {
		gs.Result = fmt.Sprintf("Draw (%s)", reason)
		gs.emit(log.NewTieEvent(gs.Turn, gs.Phase(), reason))
		return
	}
	gs.Result = fmt.Sprintf("P%d wins (%s)", winner+1, reason)
	gs.emit(log.NewWinEvent(gs.Turn, gs.Phase(), winner, reason))
}
