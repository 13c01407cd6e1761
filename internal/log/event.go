package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventNewTurn EventType = iota
	EventShuffle
	EventDraw
	EventPlayCard
	EventFuse
	EventAttackDeclare
	EventDirectAttack
	EventCombatResult
	EventDestroy
	EventEssence
	EventCooldown
	EventPass
	EventTimeout
	EventAutoSkip
	EventWin
	EventDraw_Tie
	EventAbandon
	EventDesync
	EventResync
)

func (e EventType) String() string {
	switch e {
	case EventNewTurn:
		return "NewTurn"
	case EventShuffle:
		return "Shuffle"
	case EventDraw:
		return "Draw"
	case EventPlayCard:
		return "PlayCard"
	case EventFuse:
		return "Fuse"
	case EventAttackDeclare:
		return "AttackDeclare"
	case EventDirectAttack:
		return "DirectAttack"
	case EventCombatResult:
		return "CombatResult"
	case EventDestroy:
		return "Destroy"
	case EventEssence:
		return "Essence"
	case EventCooldown:
		return "Cooldown"
	case EventPass:
		return "Pass"
	case EventTimeout:
		return "Timeout"
	case EventAutoSkip:
		return "AutoSkip"
	case EventWin:
		return "Win"
	case EventDraw_Tie:
		return "Draw(tie)"
	case EventAbandon:
		return "Abandon"
	case EventDesync:
		return "Desync"
	case EventResync:
		return "Resync"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // global turn (1-based)
	Phase   string    // turn state name (e.g. "Player Turn")
	Player  int       // acting player (0 or 1)
	Type    EventType // event type
	Card    string    // card label (if applicable)
	Details string    // human-readable detail string
}
