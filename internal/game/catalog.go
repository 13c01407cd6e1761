package game

import "fmt"

// Archetype is a static card definition: one element at one level.
type Archetype struct {
	Type  CardType
	Level int
	Name  string // e.g. "Fuego II"
	Title string // flavour name, e.g. "Llama"
}

var titles = [NumCardTypes][MaxLevel]string{
	Fuego:    {"Chispa", "Llama", "Infierno"},
	Agua:     {"Gota", "Marea", "Maremoto"},
	Planta:   {"Brote", "Enredadera", "Bosque Ancestral"},
	Luz:      {"Destello", "Aurora", "Sol Radiante"},
	Sombra:   {"Penumbra", "Eclipse", "Abismo"},
	Espiritu: {"Susurro", "Anima", "Espiritu Eterno"},
}

var numerals = [MaxLevel]string{"I", "II", "III"}

// Catalog is the full archetype table indexed by element and level-1.
var Catalog = buildCatalog()

// CatalogByName maps archetype names to their definition.
var CatalogByName = indexCatalog(Catalog)

func buildCatalog() [NumCardTypes][MaxLevel]Archetype {
	var c [NumCardTypes][MaxLevel]Archetype
	for _, t := range AllCardTypes {
		for lvl := MinLevel; lvl <= MaxLevel; lvl++ {
			c[t][lvl-1] = Archetype{
				Type:  t,
				Level: lvl,
				Name:  fmt.Sprintf("%s %s", t, numerals[lvl-1]),
				Title: titles[t][lvl-1],
			}
		}
	}
	return c
}

func indexCatalog(c [NumCardTypes][MaxLevel]Archetype) map[string]Archetype {
	m := make(map[string]Archetype, NumCardTypes*MaxLevel)
	for _, row := range c {
		for _, a := range row {
			m[a.Name] = a
		}
	}
	return m
}

// ArchetypeFor returns the catalog entry for an element and level. Out of
// range levels are clamped.
func ArchetypeFor(t CardType, level int) Archetype {
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	if !t.Valid() {
		return Archetype{Type: t, Level: level, Name: fmt.Sprintf("Unknown %s", numerals[level-1])}
	}
	return Catalog[t][level-1]
}

// LookupArchetype looks up an archetype by name.
func LookupArchetype(name string) (Archetype, error) {
	a, ok := CatalogByName[name]
	if !ok {
		return Archetype{}, fmt.Errorf("card not found in catalog: %q", name)
	}
	return a, nil
}
