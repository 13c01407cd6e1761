package game

import "math/bits"

// EssenceSet is the set of activated elemental essences. It only grows.
type EssenceSet uint8

const allEssences EssenceSet = 1<<NumCardTypes - 1

// Activate adds t to the set and reports whether it was newly activated.
func (s *EssenceSet) Activate(t CardType) bool {
	if !t.Valid() || s.Has(t) {
		return false
	}
	*s |= 1 << uint(t)
	return true
}

// Has reports whether t is active.
func (s EssenceSet) Has(t CardType) bool {
	return t.Valid() && s&(1<<uint(t)) != 0
}

// Count returns the number of active essences.
func (s EssenceSet) Count() int {
	return bits.OnesCount8(uint8(s & allEssences))
}

// Complete reports whether all six essences are active.
func (s EssenceSet) Complete() bool {
	return s&allEssences == allEssences
}

// Types lists the active essences in catalog order.
func (s EssenceSet) Types() []CardType {
	var out []CardType
	for _, t := range AllCardTypes {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// EssencesOf builds a set from a list of types.
func EssencesOf(types ...CardType) EssenceSet {
	var s EssenceSet
	for _, t := range types {
		s.Activate(t)
	}
	return s
}
