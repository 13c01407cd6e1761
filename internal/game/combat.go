package game

// Winner is the side that prevails in a combat.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerAttacker
	WinnerDefender
)

func (w Winner) String() string {
	switch w {
	case WinnerAttacker:
		return "attacker"
	case WinnerDefender:
		return "defender"
	default:
		return "none"
	}
}

// Combatant is the part of a card that matters in combat.
type Combatant struct {
	Type  CardType
	Level int
}

// CombatantOf returns the combat view of a card.
func CombatantOf(c *CardToken) Combatant {
	return Combatant{Type: c.Type, Level: c.Level}
}

// Outcome is the result of a single combat.
type Outcome struct {
	Winner Winner
	Reason string
}

// Resolve decides a combat between attacker and defender. A level gap of two
// or more always wins; a gap of one wins unless the lower card counters the
// higher by type; equal levels fall back to type advantage.
func Resolve(attacker, defender Combatant) Outcome {
	diff := attacker.Level - defender.Level
	atkBeatsDef := attacker.Type.Beats() == defender.Type
	defBeatsAtk := defender.Type.Beats() == attacker.Type

	switch {
	case diff >= 2:
		return Outcome{Winner: WinnerAttacker, Reason: "overwhelming level"}
	case diff <= -2:
		return Outcome{Winner: WinnerDefender, Reason: "overwhelming level"}
	case diff == 1:
		if defBeatsAtk {
			return Outcome{Winner: WinnerNone, Reason: "type counters level"}
		}
		return Outcome{Winner: WinnerAttacker, Reason: "level"}
	case diff == -1:
		if atkBeatsDef {
			return Outcome{Winner: WinnerNone, Reason: "type counters level"}
		}
		return Outcome{Winner: WinnerDefender, Reason: "level"}
	}

	switch {
	case atkBeatsDef:
		return Outcome{Winner: WinnerAttacker, Reason: "type advantage"}
	case defBeatsAtk:
		return Outcome{Winner: WinnerDefender, Reason: "type advantage"}
	default:
		return Outcome{Winner: WinnerNone, Reason: "stalemate"}
	}
}
