package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GameEvent(nil), l.events...)
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 14 chars for alignment
	for len(phase) < 14 {
		phase += " "
	}

	return fmt.Sprintf("T%-3d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewTurnEvent(turn int, phase string, player int, ownTurn int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s, own turn %d) ===", turn, playerName(player), ownTurn),
	}
}

func NewShuffleEvent(player int, size int) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffled a %d-card deck", playerName(player), size),
	}
}

func NewDrawEvent(turn int, phase string, player int, card string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    card,
		Details: fmt.Sprintf("%s draws %s", playerName(player), card),
	}
}

func NewPlayCardEvent(turn int, phase string, player int, card string, slot int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayCard,
		Card:    card,
		Details: fmt.Sprintf("%s plays %s to field slot %d", playerName(player), card, slot+1),
	}
}

func NewFuseEvent(turn int, phase string, player int, result string, slotA, slotB int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventFuse,
		Card:    result,
		Details: fmt.Sprintf("%s fuses slots %d+%d into %s", playerName(player), slotA+1, slotB+1, result),
	}
}

func NewAttackDeclareEvent(turn int, phase string, player int, attacker, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttackDeclare,
		Card:    attacker,
		Details: fmt.Sprintf("%s declares attack: %s → %s", playerName(player), attacker, defender),
	}
}

func NewDirectAttackEvent(turn int, phase string, player int, attacker string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDirectAttack,
		Card:    attacker,
		Details: fmt.Sprintf("%s attacks directly with %s", playerName(player), attacker),
	}
}

func NewCombatResultEvent(turn int, phase string, player int, result string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCombatResult,
		Details: fmt.Sprintf("Combat result: %s", result),
	}
}

func NewDestroyEvent(turn int, phase string, owner int, card string, tokens int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  owner,
		Type:    EventDestroy,
		Card:    card,
		Details: fmt.Sprintf("%s is destroyed (%d token(s) to %s's graveyard)", card, tokens, playerName(owner)),
	}
}

func NewEssenceEvent(turn int, phase string, player int, essence string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventEssence,
		Card:    essence,
		Details: fmt.Sprintf("%s activates the %s essence (%d/6)", playerName(player), essence, count),
	}
}

func NewCooldownEvent(turn int, phase string, player int, card string, blockedUntil int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCooldown,
		Card:    card,
		Details: fmt.Sprintf("%s must rest on %s's own turn %d", card, playerName(player), blockedUntil),
	}
}

func NewPassEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPass,
		Details: fmt.Sprintf("%s passes", playerName(player)),
	}
}

func NewTimeoutEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTimeout,
		Details: fmt.Sprintf("%s ran out of time", playerName(player)),
	}
}

func NewAutoSkipEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAutoSkip,
		Details: fmt.Sprintf("%s must attack but has no field cards, turn skipped", playerName(player)),
	}
}

func NewWinEvent(turn int, phase string, winner int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", playerName(winner), reason),
	}
}

func NewTieEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  -1,
		Type:    EventDraw_Tie,
		Details: fmt.Sprintf("Match drawn (%s)", reason),
	}
}

func NewAbandonEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAbandon,
		Details: fmt.Sprintf("%s left the match", playerName(player)),
	}
}

func NewDesyncEvent(turn int, phase string, player int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDesync,
		Details: fmt.Sprintf("Desync on %s's action: %s", playerName(player), reason),
	}
}

func NewResyncEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventResync,
		Details: fmt.Sprintf("State restored from peer snapshot at turn %d", turn),
	}
}
