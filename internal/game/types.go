package game

import (
	"fmt"
	"strings"
)

// --- Enums ---

// CardType is one of the six elements. The elements form two independent
// 3-cycles of advantage: Fuego→Planta→Agua→Fuego and Luz→Sombra→Espiritu→Luz.
type CardType int

const (
	Fuego CardType = iota
	Agua
	Planta
	Luz
	Sombra
	Espiritu
)

// NumCardTypes is the number of distinct elements.
const NumCardTypes = 6

// AllCardTypes lists every element in catalog order.
var AllCardTypes = [NumCardTypes]CardType{Fuego, Agua, Planta, Luz, Sombra, Espiritu}

func (t CardType) String() string {
	switch t {
	case Fuego:
		return "Fuego"
	case Agua:
		return "Agua"
	case Planta:
		return "Planta"
	case Luz:
		return "Luz"
	case Sombra:
		return "Sombra"
	case Espiritu:
		return "Espiritu"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the six elements.
func (t CardType) Valid() bool {
	return t >= Fuego && t <= Espiritu
}

// Beats returns the single element t has advantage over.
func (t CardType) Beats() CardType {
	switch t {
	case Fuego:
		return Planta
	case Planta:
		return Agua
	case Agua:
		return Fuego
	case Luz:
		return Sombra
	case Sombra:
		return Espiritu
	case Espiritu:
		return Luz
	default:
		return t
	}
}

// ParseCardType parses an element name (case-insensitive).
func ParseCardType(s string) (CardType, error) {
	for _, t := range AllCardTypes {
		if strings.EqualFold(t.String(), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown card type %q", s)
}

func (t CardType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid card type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *CardType) UnmarshalText(text []byte) error {
	parsed, err := ParseCardType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TurnState is the state tag of the turn state machine.
type TurnState int

const (
	StatePreStart TurnState = iota
	StatePlayerTurn
	StateOpponentTurn
	StateGameOver
)

func (s TurnState) String() string {
	switch s {
	case StatePlayerTurn:
		return "Player Turn"
	case StateOpponentTurn:
		return "Opponent Turn"
	case StateGameOver:
		return "Game Over"
	default:
		return "Pre-Start"
	}
}

// stateFor returns the turn state in which player is the active side.
func stateFor(player int) TurnState {
	if player == 0 {
		return StatePlayerTurn
	}
	return StateOpponentTurn
}

const (
	MinLevel = 1
	MaxLevel = 3
)

// --- CardToken (runtime card in deck/hand/field) ---

// AttackCooldown is the per-card attack bookkeeping, keyed by the owner's
// own turn counter rather than the global turn.
type AttackCooldown struct {
	ConsecutiveAttacks  int `json:"consecutiveAttacks"`
	LastAttackedOwnTurn int `json:"lastAttackedOwnTurn"`
	BlockedUntilOwnTurn int `json:"blockedUntilOwnTurn"`
}

// CardToken is a single card instance. ID is immutable; Level changes only
// through fusion (which mints a new token) and Revealed only goes false→true.
type CardToken struct {
	ID       string         `json:"id"`
	Type     CardType       `json:"type"`
	Level    int            `json:"level"`
	Owner    int            `json:"owner"`
	Revealed bool           `json:"revealed"`
	Cooldown AttackCooldown `json:"cooldown"`
}

func (c *CardToken) String() string {
	if c == nil {
		return "(empty)"
	}
	return ArchetypeFor(c.Type, c.Level).Name
}

// DisplayString returns the label shown to the given viewer; unrevealed
// opposing cards hide their identity.
func (c *CardToken) DisplayString(viewer int) string {
	if c == nil {
		return "(empty)"
	}
	if !c.Revealed && viewer != c.Owner {
		return "face-down card"
	}
	return c.String()
}

// Weight is the number of level-1 tokens this card stands for.
func (c *CardToken) Weight() int {
	return 1 << (c.Level - 1)
}

func (c *CardToken) clone() *CardToken {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// GraveToken is a level-1 base token left behind by a destroyed card.
type GraveToken struct {
	Type  CardType `json:"type"`
	Owner int      `json:"owner"`
}

// --- Action types ---

type ActionType int

const (
	ActionPlayCard ActionType = iota
	ActionFuse
	ActionAttack
	ActionDirectAttack
	ActionPass
)

func (a ActionType) String() string {
	switch a {
	case ActionPlayCard:
		return "Play Card"
	case ActionFuse:
		return "Fuse"
	case ActionAttack:
		return "Attack"
	case ActionDirectAttack:
		return "Direct Attack"
	case ActionPass:
		return "Pass"
	default:
		return "Unknown"
	}
}

// Action is one legal choice offered to a controller.
type Action struct {
	Type   ActionType
	Player int
	Card   *CardToken // hand card (play) or attacker/first operand
	Slot   int        // target field slot (play), attacker slot, or first fusion operand
	Target int        // defender slot or second fusion operand; -1 when unused
	Desc   string     // human-readable description
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	return a.Type.String()
}

// Event converts the action into the reducer event it stands for.
func (a Action) Event() Event {
	switch a.Type {
	case ActionPlayCard:
		return PlayCard{Player: a.Player, Card: refOf(a.Card), Slot: a.Slot}
	case ActionFuse:
		return Fuse{Player: a.Player, SlotA: a.Slot, SlotB: a.Target}
	case ActionAttack:
		return Attack{Player: a.Player, AttackerSlot: a.Slot, DefenderSlot: a.Target}
	case ActionDirectAttack:
		return Attack{Player: a.Player, AttackerSlot: a.Slot, DefenderSlot: -1, Direct: true}
	default:
		return Pass{Player: a.Player}
	}
}
