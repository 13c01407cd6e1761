package game

// InactivityLimit is the number of consecutive own turns without an action
// that loses the match.
const InactivityLimit = 3

// Victory reasons.
const (
	ReasonInactivity   = "inactivity"
	ReasonFieldControl = "field control"
	ReasonEssences     = "essences"
	ReasonAbandon      = "abandon"
	ReasonTurnLimit    = "turn limit"
)

// Verdict is the result of a victory check.
type Verdict struct {
	Decided bool
	Winner  int // -1 for a draw
	Reason  string
}

// EvaluateVictory checks the win conditions in priority order: inactivity,
// then field control, then essences. Within a tier player 0 is checked first.
func EvaluateVictory(players [2]*Player) Verdict {
	for i, p := range players {
		if p.InactiveTurns >= InactivityLimit {
			return Verdict{Decided: true, Winner: 1 - i, Reason: ReasonInactivity}
		}
	}
	for i, p := range players {
		if p.HasAllFieldTypes() {
			return Verdict{Decided: true, Winner: i, Reason: ReasonFieldControl}
		}
	}
	for i, p := range players {
		if p.Essences.Complete() {
			return Verdict{Decided: true, Winner: i, Reason: ReasonEssences}
		}
	}
	return Verdict{Winner: -1}
}
