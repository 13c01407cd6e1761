package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// randomCodeAttempts bounds random picks before falling back to a scan.
const randomCodeAttempts = 32

// Config configures a Manager.
type Config struct {
	// CodeDigits is the room code length. Defaults to 6.
	CodeDigits int
	// CodeMin and CodeMax bound the numeric code range (inclusive). Zero
	// values span every code of CodeDigits digits without a leading zero.
	CodeMin int
	CodeMax int
	// Seed drives code and game seed generation. Zero picks a time-based one.
	Seed int64

	Registry CodeRegistry
	Notifier Notifier
	Logger   *slog.Logger
}

// Manager owns the active rooms and relays signals between the two
// participants of each room.
type Manager struct {
	mu       sync.Mutex
	store    *Store
	registry CodeRegistry
	notifier Notifier
	rng      *rand.Rand
	digits   int
	min, max int
	logger   *slog.Logger
}

// NewManager creates a room manager.
func NewManager(cfg Config) (*Manager, error) {
	digits := cfg.CodeDigits
	if digits <= 0 {
		digits = 6
	}
	lo, hi := cfg.CodeMin, cfg.CodeMax
	if lo == 0 && hi == 0 {
		lo = pow10(digits - 1)
		hi = pow10(digits) - 1
	}
	if lo < 0 || hi < lo || hi >= pow10(digits) {
		return nil, fmt.Errorf("%w: [%d, %d] with %d digits", ErrInvalidCodeRange, lo, hi, digits)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := &Manager{
		store:    NewStore(),
		registry: cfg.Registry,
		notifier: cfg.Notifier,
		rng:      rand.New(rand.NewSource(seed)),
		digits:   digits,
		min:      lo,
		max:      hi,
		logger:   cfg.Logger,
	}
	if m.registry == nil {
		m.registry = NewMemoryCodeRegistry()
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "room")
	return m, nil
}

func pow10(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// SetNotifier replaces the notifier. It must be called before the manager
// is shared.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// Get returns a copy of the room with the given code.
func (m *Manager) Get(code string) (*Room, bool) {
	return m.store.Get(NormalizeCode(code))
}

// RoomOf returns the room the connection sits in.
func (m *Manager) RoomOf(connID string) (*Room, bool) {
	code, ok := m.store.RoomOf(connID)
	if !ok {
		return nil, false
	}
	return m.store.Get(code)
}

// Count returns the number of active rooms.
func (m *Manager) Count() int {
	return m.store.Count()
}

// NormalizeCode strips all whitespace from a submitted code.
func NormalizeCode(code string) string {
	return strings.Join(strings.Fields(code), "")
}

// CreateRoom opens a room with connID as host.
func (m *Manager) CreateRoom(ctx context.Context, connID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store.RoomOf(connID); ok {
		return nil, ErrAlreadyInRoom
	}
	code, err := m.generateCode(ctx)
	if err != nil {
		return nil, err
	}
	r := &Room{
		Code:      code,
		Players:   []Participant{{ConnID: connID, Role: RoleHost}},
		CreatedAt: time.Now(),
	}
	m.store.Put(r)
	m.logger.Info("room created", "code", code, "host", connID)
	return r.clone(), nil
}

// generateCode picks an unused code: random attempts first, then a linear
// scan from a random start so a nearly exhausted range still succeeds.
func (m *Manager) generateCode(ctx context.Context) (string, error) {
	span := m.max - m.min + 1
	for i := 0; i < randomCodeAttempts; i++ {
		code := m.formatCode(m.min + m.rng.Intn(span))
		ok, err := m.reserve(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	start := m.rng.Intn(span)
	for i := 0; i < span; i++ {
		code := m.formatCode(m.min + (start+i)%span)
		ok, err := m.reserve(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", ErrNoCodeAvailable
}

func (m *Manager) reserve(ctx context.Context, code string) (bool, error) {
	if _, taken := m.store.Get(code); taken {
		return false, nil
	}
	return m.registry.Reserve(ctx, code)
}

func (m *Manager) formatCode(n int) string {
	return fmt.Sprintf("%0*d", m.digits, n)
}

// JoinRoom seats connID as guest. When the room fills, both participants
// receive player_joined and game_start.
func (m *Manager) JoinRoom(ctx context.Context, connID, code string) (Role, error) {
	code = NormalizeCode(code)

	m.mu.Lock()
	if _, ok := m.store.RoomOf(connID); ok {
		m.mu.Unlock()
		return "", ErrAlreadyInRoom
	}
	r, ok := m.store.Get(code)
	if !ok {
		m.mu.Unlock()
		return "", ErrRoomNotFound
	}
	if r.Full() {
		m.mu.Unlock()
		return "", ErrRoomFull
	}
	r.Players = append(r.Players, Participant{ConnID: connID, Role: RoleGuest})
	if r.Full() {
		r.Seed = m.gameSeed()
	}
	m.store.Put(r)
	m.mu.Unlock()

	m.logger.Info("room joined", "code", code, "guest", connID)
	ids := r.ConnIDs()
	m.notifier.PlayerJoined(ids, len(r.Players), r.Full())
	if r.Full() {
		host, _ := r.ByRole(RoleHost)
		guest, _ := r.ByRole(RoleGuest)
		m.notifier.GameStart(ids, host.ConnID, guest.ConnID, r.Seed)
	}
	return RoleGuest, nil
}

func (m *Manager) gameSeed() int64 {
	for {
		if s := m.rng.Int63(); s != 0 {
			return s
		}
	}
}

// RelayGameEvent forwards payload to the other participant of the sender's
// room. The sender never receives its own event.
func (m *Manager) RelayGameEvent(connID string, payload json.RawMessage) error {
	r, ok := m.RoomOf(connID)
	if !ok {
		return ErrNotInRoom
	}
	for _, p := range r.Players {
		if p.ConnID != connID {
			m.notifier.GameEvent(p.ConnID, payload)
		}
	}
	return nil
}

// EndTurn broadcasts a turn change to both participants.
func (m *Manager) EndTurn(connID string, next Role, turnNumber int) error {
	r, ok := m.RoomOf(connID)
	if !ok {
		return ErrNotInRoom
	}
	if next != RoleHost && next != RoleGuest {
		return fmt.Errorf("end turn: unknown role %q", next)
	}
	m.notifier.TurnChanged(r.ConnIDs(), next, turnNumber)
	return nil
}

// Leave removes connID from its room. An empty room is destroyed and its
// code released; a remaining participant is notified and becomes host.
func (m *Manager) Leave(ctx context.Context, connID string) error {
	m.mu.Lock()
	code, ok := m.store.RoomOf(connID)
	if !ok {
		m.mu.Unlock()
		return ErrNotInRoom
	}
	r, _ := m.store.Get(code)
	remaining := r.Players[:0]
	for _, p := range r.Players {
		if p.ConnID != connID {
			remaining = append(remaining, p)
		}
	}
	r.Players = remaining

	if len(r.Players) == 0 {
		m.store.Delete(code)
		m.mu.Unlock()
		m.logger.Info("room destroyed", "code", code)
		if err := m.registry.Release(ctx, code); err != nil {
			m.logger.Warn("release room code failed", "code", code, "error", err)
			return err
		}
		return nil
	}

	r.Players[0].Role = RoleHost
	m.store.Put(r)
	m.mu.Unlock()

	m.logger.Info("participant left", "code", code, "conn", connID)
	m.notifier.PlayerLeft(r.ConnIDs(), code)
	return nil
}
