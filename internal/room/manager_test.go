package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type sent struct {
	kind    string
	to      []string
	payload string
	role    Role
	turn    int
	seed    int64
}

// recordingNotifier captures every signal the manager sends.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) add(s sent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, s)
}

func (n *recordingNotifier) PlayerJoined(ids []string, players int, canStart bool) {
	n.add(sent{kind: "player_joined", to: ids, turn: players})
}

func (n *recordingNotifier) GameStart(ids []string, hostID, guestID string, seed int64) {
	n.add(sent{kind: "game_start", to: ids, payload: hostID + "/" + guestID, seed: seed})
}

func (n *recordingNotifier) GameEvent(id string, payload json.RawMessage) {
	n.add(sent{kind: "game_event", to: []string{id}, payload: string(payload)})
}

func (n *recordingNotifier) TurnChanged(ids []string, current Role, turn int) {
	n.add(sent{kind: "turn_changed", to: ids, role: current, turn: turn})
}

func (n *recordingNotifier) PlayerLeft(ids []string, code string) {
	n.add(sent{kind: "player_left", to: ids, payload: code})
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	cfg.Notifier = n
	if cfg.Seed == 0 {
		cfg.Seed = 7
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m, n
}

func TestCreateRoomCode(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	r, err := m.CreateRoom(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Code) != 6 {
		t.Errorf("code %q is not 6 digits", r.Code)
	}
	for _, c := range r.Code {
		if c < '0' || c > '9' {
			t.Fatalf("code %q is not numeric", r.Code)
		}
	}
	if r.Players[0].Role != RoleHost {
		t.Errorf("creator role = %s, want host", r.Players[0].Role)
	}
	if _, err := m.CreateRoom(context.Background(), "a"); !errors.Is(err, ErrAlreadyInRoom) {
		t.Errorf("second create: got %v, want ErrAlreadyInRoom", err)
	}
}

func TestRoomCodesUniqueInSmallRange(t *testing.T) {
	m, _ := newTestManager(t, Config{CodeMin: 100000, CodeMax: 100999})
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		r, err := m.CreateRoom(context.Background(), fmt.Sprintf("conn-%d", i))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[r.Code] {
			t.Fatalf("create %d: duplicate code %s", i, r.Code)
		}
		seen[r.Code] = true
	}
	if _, err := m.CreateRoom(context.Background(), "overflow"); !errors.Is(err, ErrNoCodeAvailable) {
		t.Errorf("create in exhausted range: got %v, want ErrNoCodeAvailable", err)
	}
}

func TestInvalidCodeRange(t *testing.T) {
	_, err := NewManager(Config{CodeDigits: 4, CodeMin: 5000, CodeMax: 20000})
	if !errors.Is(err, ErrInvalidCodeRange) {
		t.Errorf("got %v, want ErrInvalidCodeRange", err)
	}
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()
	m, n := newTestManager(t, Config{})
	r, _ := m.CreateRoom(ctx, "host")

	spaced := r.Code[:3] + " " + r.Code[3:] + "\n"
	role, err := m.JoinRoom(ctx, "guest", spaced)
	if err != nil {
		t.Fatal(err)
	}
	if role != RoleGuest {
		t.Errorf("role = %s, want guest", role)
	}

	got := n.kinds()
	if len(got) != 2 || got[0] != "player_joined" || got[1] != "game_start" {
		t.Fatalf("signals = %v", got)
	}
	start := n.sent[1]
	if start.payload != "host/guest" {
		t.Errorf("game_start ids = %s", start.payload)
	}
	if start.seed == 0 {
		t.Error("game_start carries no seed")
	}
	if n.sent[0].turn != 2 || len(n.sent[0].to) != 2 {
		t.Errorf("player_joined = %+v", n.sent[0])
	}

	if _, err := m.JoinRoom(ctx, "third", r.Code); !errors.Is(err, ErrRoomFull) {
		t.Errorf("third join: got %v, want ErrRoomFull", err)
	}
	if _, err := m.JoinRoom(ctx, "lost", "000000"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown code: got %v, want ErrRoomNotFound", err)
	}
}

func TestRelayGameEventSkipsSender(t *testing.T) {
	ctx := context.Background()
	m, n := newTestManager(t, Config{})
	r, _ := m.CreateRoom(ctx, "host")
	m.JoinRoom(ctx, "guest", r.Code)
	n.sent = nil

	if err := m.RelayGameEvent("host", json.RawMessage(`{"type":"pass"}`)); err != nil {
		t.Fatal(err)
	}
	if len(n.sent) != 1 {
		t.Fatalf("relayed %d messages, want 1", len(n.sent))
	}
	if n.sent[0].to[0] != "guest" || n.sent[0].payload != `{"type":"pass"}` {
		t.Errorf("relayed %+v", n.sent[0])
	}
	if err := m.RelayGameEvent("stranger", nil); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("stranger relay: got %v, want ErrNotInRoom", err)
	}
}

func TestEndTurnBroadcast(t *testing.T) {
	ctx := context.Background()
	m, n := newTestManager(t, Config{})
	r, _ := m.CreateRoom(ctx, "host")
	m.JoinRoom(ctx, "guest", r.Code)
	n.sent = nil

	if err := m.EndTurn("host", RoleGuest, 2); err != nil {
		t.Fatal(err)
	}
	if len(n.sent) != 1 || n.sent[0].kind != "turn_changed" {
		t.Fatalf("signals = %v", n.kinds())
	}
	s := n.sent[0]
	if len(s.to) != 2 || s.role != RoleGuest || s.turn != 2 {
		t.Errorf("turn_changed = %+v", s)
	}
	if err := m.EndTurn("host", Role("nobody"), 3); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	m, n := newTestManager(t, Config{})
	r, _ := m.CreateRoom(ctx, "host")
	m.JoinRoom(ctx, "guest", r.Code)
	n.sent = nil

	if err := m.Leave(ctx, "host"); err != nil {
		t.Fatal(err)
	}
	if len(n.sent) != 1 || n.sent[0].kind != "player_left" || n.sent[0].to[0] != "guest" {
		t.Fatalf("signals = %+v", n.sent)
	}
	left, ok := m.Get(r.Code)
	if !ok || len(left.Players) != 1 || left.Players[0].Role != RoleHost {
		t.Fatalf("remaining room = %+v", left)
	}

	if err := m.Leave(ctx, "guest"); err != nil {
		t.Fatal(err)
	}
	if m.Count() != 0 {
		t.Errorf("room count = %d after both left", m.Count())
	}
	if err := m.Leave(ctx, "guest"); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("second leave: got %v, want ErrNotInRoom", err)
	}

	// Released codes are reusable.
	ok2, err := m.registry.Reserve(ctx, r.Code)
	if err != nil || !ok2 {
		t.Errorf("code %s not released: ok=%v err=%v", r.Code, ok2, err)
	}
}

func TestRedisRegistryUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	defer client.Close()

	m, _ := newTestManager(t, Config{Registry: NewRedisCodeRegistry(client, time.Minute)})
	_, err := m.CreateRoom(context.Background(), "host")
	if err == nil {
		t.Fatal("expected redis error")
	}
	if m.Count() != 0 {
		t.Errorf("room stored despite registry failure")
	}
}
