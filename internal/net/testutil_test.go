package net

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/peterkuimelis/elementa/internal/room"
)

// memRelay is an in-process relay built on room.Manager; each connection
// gets a buffered inbox instead of a websocket.
type memRelay struct {
	t       *testing.T
	manager *room.Manager
	inboxes map[string]chan ServerMessage
}

func newMemRelay(t *testing.T, cfg room.Config) *memRelay {
	t.Helper()
	r := &memRelay{t: t, inboxes: make(map[string]chan ServerMessage)}
	cfg.Notifier = r
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	m, err := room.NewManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	r.manager = m
	return r
}

// connect registers a connection. Must be called before goroutines start.
func (r *memRelay) connect(id string) *pipeTransport {
	r.inboxes[id] = make(chan ServerMessage, 4096)
	return &pipeTransport{id: id, relay: r}
}

func (r *memRelay) deliver(id string, msg ServerMessage) {
	r.inboxes[id] <- msg
}

func (r *memRelay) PlayerJoined(ids []string, players int, canStart bool) {
	for _, id := range ids {
		r.deliver(id, PlayerJoined(players, canStart))
	}
}

func (r *memRelay) GameStart(ids []string, hostID, guestID string, seed int64) {
	for _, id := range ids {
		r.deliver(id, ServerMessage{Type: MsgGameStart, CurrentTurn: room.RoleHost, HostID: hostID, GuestID: guestID, Seed: seed})
	}
}

func (r *memRelay) GameEvent(id string, payload json.RawMessage) {
	r.deliver(id, ServerMessage{Type: MsgGameEvent, Event: payload})
}

func (r *memRelay) TurnChanged(ids []string, current room.Role, turn int) {
	for _, id := range ids {
		r.deliver(id, ServerMessage{Type: MsgTurnChanged, CurrentTurn: current, TurnNumber: turn})
	}
}

func (r *memRelay) PlayerLeft(ids []string, code string) {
	for _, id := range ids {
		r.deliver(id, ServerMessage{Type: MsgPlayerLeft, Code: code})
	}
}

type pipeTransport struct {
	id    string
	relay *memRelay
}

func (p *pipeTransport) Send(ctx context.Context, msg ClientMessage) error {
	m := p.relay.manager
	switch msg.Type {
	case MsgCreateRoom:
		rm, err := m.CreateRoom(ctx, p.id)
		if err != nil {
			p.relay.deliver(p.id, Rejected(MsgCreateRoom, err))
			return nil
		}
		p.relay.deliver(p.id, Accepted(MsgCreateRoom, rm.Code, room.RoleHost))
	case MsgJoinRoom:
		role, err := m.JoinRoom(ctx, p.id, msg.Code)
		if err != nil {
			p.relay.deliver(p.id, Rejected(MsgJoinRoom, err))
			return nil
		}
		p.relay.deliver(p.id, Accepted(MsgJoinRoom, room.NormalizeCode(msg.Code), role))
	case MsgGameEvent:
		return m.RelayGameEvent(p.id, msg.Event)
	case MsgEndTurn:
		return m.EndTurn(p.id, msg.CurrentTurn, msg.TurnNumber)
	}
	return nil
}

func (p *pipeTransport) Recv(ctx context.Context) (ServerMessage, error) {
	select {
	case msg := <-p.relay.inboxes[p.id]:
		return msg, nil
	case <-ctx.Done():
		return ServerMessage{}, ctx.Err()
	}
}

func (p *pipeTransport) TryRecv() (ServerMessage, bool) {
	select {
	case msg := <-p.relay.inboxes[p.id]:
		return msg, true
	default:
		return ServerMessage{}, false
	}
}

func (p *pipeTransport) leave() {
	p.relay.manager.Leave(context.Background(), p.id)
}

// seatedPair opens a room for two transports and skips the lobby messages.
func seatedPair(t *testing.T) (host, guest *pipeTransport, seed int64) {
	t.Helper()
	ctx := context.Background()
	relay := newMemRelay(t, room.Config{})
	host = relay.connect("host")
	guest = relay.connect("guest")

	code, err := NewLobby(host).CreateRoom(ctx)
	if err != nil {
		t.Fatal(err)
	}
	lobby := NewLobby(guest)
	if _, err := lobby.JoinRoom(ctx, code); err != nil {
		t.Fatal(err)
	}
	start, err := lobby.WaitStart(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewLobby(host).WaitStart(ctx); err != nil {
		t.Fatal(err)
	}
	return host, guest, start.Seed
}
