package game

import (
	"fmt"

	"github.com/google/uuid"
)

// fusionNamespace scopes the deterministic IDs minted for fusion results.
var fusionNamespace = uuid.MustParse("8a1f6c3e-2b7d-4f0e-9c55-0d3e7a61b2c4")

// FuseCards merges two field cards of the same element, level and owner into
// one card of the next level. Neither operand is modified. The result's ID is
// derived from the operand IDs so every engine replaying the same fusion
// agrees on it.
func FuseCards(a, b *CardToken) (*CardToken, error) {
	if a == nil || b == nil {
		return nil, ErrSlotEmpty
	}
	if a.ID == b.ID {
		return nil, fmt.Errorf("%w: a card cannot fuse with itself", ErrFusionMismatch)
	}
	if a.Type != b.Type || a.Level != b.Level || a.Owner != b.Owner {
		return nil, fmt.Errorf("%w: %s + %s", ErrFusionMismatch, a, b)
	}
	if a.Level >= MaxLevel {
		return nil, fmt.Errorf("%w: %s", ErrFusionMaxLevel, a)
	}
	return &CardToken{
		ID:       uuid.NewSHA1(fusionNamespace, []byte(a.ID+"+"+b.ID)).String(),
		Type:     a.Type,
		Level:    a.Level + 1,
		Owner:    a.Owner,
		Revealed: a.Revealed || b.Revealed,
	}, nil
}

// CanFuse reports whether FuseCards would accept the pair.
func CanFuse(a, b *CardToken) bool {
	_, err := FuseCards(a, b)
	return err == nil
}

// Decompose returns the graveyard tokens a destroyed card leaves behind:
// 2^(level-1) level-1 tokens of its element.
func Decompose(c *CardToken) []GraveToken {
	n := c.Weight()
	out := make([]GraveToken, n)
	for i := range out {
		out[i] = GraveToken{Type: c.Type, Owner: c.Owner}
	}
	return out
}
