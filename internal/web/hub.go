package web

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/peterkuimelis/elementa/internal/net"
	"github.com/peterkuimelis/elementa/internal/room"
)

// outboxSize bounds messages queued for one connection. A client that
// falls this far behind is disconnected.
const outboxSize = 256

// client is one websocket connection as seen by the hub.
type client struct {
	id     string
	out    chan net.ServerMessage
	closed chan struct{}
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.closed) })
}

// Hub routes relay messages to websocket connections by connection ID.
// It implements room.Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger.With("component", "hub"),
	}
}

func (h *Hub) register(id string) *client {
	c := &client{
		id:     id,
		out:    make(chan net.ServerMessage, outboxSize),
		closed: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// send queues msg for id. Unknown IDs are ignored.
func (h *Hub) send(id string, msg net.ServerMessage) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.out <- msg:
	case <-c.closed:
	default:
		h.logger.Warn("outbox full, dropping connection", "conn", id, "type", msg.Type)
		c.close()
	}
}

func (h *Hub) broadcast(ids []string, msg net.ServerMessage) {
	for _, id := range ids {
		h.send(id, msg)
	}
}

func (h *Hub) PlayerJoined(ids []string, players int, canStart bool) {
	h.broadcast(ids, net.PlayerJoined(players, canStart))
}

func (h *Hub) GameStart(ids []string, hostID, guestID string, seed int64) {
	h.broadcast(ids, net.ServerMessage{
		Type:        net.MsgGameStart,
		CurrentTurn: room.RoleHost,
		HostID:      hostID,
		GuestID:     guestID,
		Seed:        seed,
	})
}

func (h *Hub) GameEvent(id string, payload json.RawMessage) {
	h.send(id, net.ServerMessage{Type: net.MsgGameEvent, Event: payload})
}

func (h *Hub) TurnChanged(ids []string, current room.Role, turn int) {
	h.broadcast(ids, net.ServerMessage{Type: net.MsgTurnChanged, CurrentTurn: current, TurnNumber: turn})
}

func (h *Hub) PlayerLeft(ids []string, code string) {
	h.broadcast(ids, net.ServerMessage{Type: net.MsgPlayerLeft, Code: code})
}
