package game

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// CopiesPerType is the number of level-1 copies of each element in the
// standard deck.
const CopiesPerType = 8

// StandardDeckSize is the size of the standard deck.
const StandardDeckSize = CopiesPerType * NumCardTypes

// StandardDeck returns the standard 48-card composition: 8 level-1 copies of
// each element, in catalog order.
func StandardDeck() []Archetype {
	deck := make([]Archetype, 0, StandardDeckSize)
	for _, t := range AllCardTypes {
		for i := 0; i < CopiesPerType; i++ {
			deck = append(deck, ArchetypeFor(t, 1))
		}
	}
	return deck
}

// IDSource mints card instance IDs.
type IDSource func() string

// SeededIDs returns an IDSource producing random (v4) UUIDs drawn from r,
// so two sources built from the same seed produce the same sequence.
func SeededIDs(r io.Reader) IDSource {
	return func() string {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
}

// Deck is one player's draw pile. The top of the deck is the last element.
type Deck struct {
	Owner int
	cards []*CardToken
}

// NewDeck instantiates tokens for the given composition. The first entry of
// defs ends up on top.
func NewDeck(owner int, defs []Archetype, ids IDSource) *Deck {
	d := &Deck{Owner: owner, cards: make([]*CardToken, 0, len(defs))}
	for i := len(defs) - 1; i >= 0; i-- {
		d.cards = append(d.cards, &CardToken{
			ID:    ids(),
			Type:  defs[i].Type,
			Level: defs[i].Level,
			Owner: owner,
		})
	}
	return d
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns the remaining cards, bottom first.
func (d *Deck) Cards() []*CardToken {
	return append([]*CardToken(nil), d.cards...)
}

// Shuffle performs a Fisher-Yates shuffle driven by r.
func (d *Deck) Shuffle(r *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card, or nil if the deck is empty.
func (d *Deck) Draw() *CardToken {
	if len(d.cards) == 0 {
		return nil
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card
}

// --- Deck composition file ---

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents an archetype and its count in a deck.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// ParseDeckFile parses YAML deck data.
func ParseDeckFile(data []byte) (DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df, nil
}

// Build resolves the entry into archetypes.
func (e DeckEntry) Build() ([]Archetype, error) {
	var defs []Archetype
	for _, entry := range e.Cards {
		a, err := LookupArchetype(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("deck %q: %w", e.Name, err)
		}
		if entry.Count < 0 {
			return nil, fmt.Errorf("deck %q: negative count for %q", e.Name, entry.Name)
		}
		for i := 0; i < entry.Count; i++ {
			defs = append(defs, a)
		}
	}
	return defs, nil
}

// DeckByNumber returns the Nth deck (1-indexed) from the deck file at path.
// An empty path yields the standard deck.
func DeckByNumber(path string, n int) (string, []Archetype, error) {
	if path == "" {
		return "Standard", StandardDeck(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	df, err := ParseDeckFile(data)
	if err != nil {
		return "", nil, err
	}

	if n < 1 || n > len(df.Decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}

	entry := df.Decks[n-1]
	defs, err := entry.Build()
	if err != nil {
		return "", nil, err
	}
	return entry.Name, defs, nil
}
