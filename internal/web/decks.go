package web

import (
	"os"

	"github.com/peterkuimelis/elementa/internal/game"
)

// DeckInfo is the JSON representation of a deck for /api/decks.
type DeckInfo struct {
	Number int         `json:"number"`
	Name   string      `json:"name"`
	Size   int         `json:"size"`
	Cards  []DeckCount `json:"cards"`
}

// DeckCount is one archetype line of a deck listing.
type DeckCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// loadDecks lists the decks in path, or the standard deck when path is
// empty. Every listed deck resolves against the catalog.
func loadDecks(path string) ([]DeckInfo, error) {
	if path == "" {
		return []DeckInfo{summarize(1, "Standard", game.StandardDeck())}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	df, err := game.ParseDeckFile(data)
	if err != nil {
		return nil, err
	}

	decks := make([]DeckInfo, 0, len(df.Decks))
	for i, entry := range df.Decks {
		defs, err := entry.Build()
		if err != nil {
			return nil, err
		}
		decks = append(decks, summarize(i+1, entry.Name, defs))
	}
	return decks, nil
}

func summarize(number int, name string, defs []game.Archetype) DeckInfo {
	di := DeckInfo{Number: number, Name: name, Size: len(defs)}
	index := make(map[string]int)
	for _, a := range defs {
		if i, ok := index[a.Name]; ok {
			di.Cards[i].Count++
			continue
		}
		index[a.Name] = len(di.Cards)
		di.Cards = append(di.Cards, DeckCount{Name: a.Name, Count: 1})
	}
	return di
}
