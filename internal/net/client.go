package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/room"
)

// inboxSize bounds relay messages buffered ahead of the game loop.
const inboxSize = 64

// Transport moves protocol messages between a client and the relay.
type Transport interface {
	Send(ctx context.Context, msg ClientMessage) error
	// Recv blocks for the next relay message.
	Recv(ctx context.Context) (ServerMessage, error)
	// TryRecv returns a buffered message without blocking.
	TryRecv() (ServerMessage, bool)
}

// Client is a websocket connection to the room relay.
type Client struct {
	conn    *websocket.Conn
	inbox   chan ServerMessage
	done    chan struct{}
	closing chan struct{}
	err     error // read error, valid once done is closed
	logger  *slog.Logger
}

// Dial connects to the relay's websocket endpoint.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		conn:    conn,
		inbox:   make(chan ServerMessage, inboxSize),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
		logger:  logger.With("component", "relay-client"),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var msg ServerMessage
		if err := wsjson.Read(context.Background(), c.conn, &msg); err != nil {
			c.logger.Debug("relay read ended", "error", err)
			c.err = err
			return
		}
		select {
		case c.inbox <- msg:
		case <-c.closing:
			c.err = errors.New("client closed")
			return
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	select {
	case <-c.closing:
	default:
		close(c.closing)
	}
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Client) Send(ctx context.Context, msg ClientMessage) error {
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

func (c *Client) Recv(ctx context.Context) (ServerMessage, error) {
	select {
	case msg := <-c.inbox:
		return msg, nil
	case <-c.done:
		// drain anything read before the connection dropped
		select {
		case msg := <-c.inbox:
			return msg, nil
		default:
		}
		return ServerMessage{}, fmt.Errorf("relay connection: %w", c.err)
	case <-ctx.Done():
		return ServerMessage{}, ctx.Err()
	}
}

func (c *Client) TryRecv() (ServerMessage, bool) {
	select {
	case msg := <-c.inbox:
		return msg, true
	default:
		return ServerMessage{}, false
	}
}

// Lobby runs the room handshake on a transport. Signals that arrive ahead
// of a reply are held for WaitStart.
type Lobby struct {
	t    Transport
	held []ServerMessage
}

func NewLobby(t Transport) *Lobby {
	return &Lobby{t: t}
}

func (l *Lobby) recv(ctx context.Context) (ServerMessage, error) {
	if len(l.held) > 0 {
		msg := l.held[0]
		l.held = l.held[1:]
		return msg, nil
	}
	return l.t.Recv(ctx)
}

// CreateRoom asks the relay for a new room and returns its code.
func (l *Lobby) CreateRoom(ctx context.Context) (string, error) {
	if err := l.t.Send(ctx, ClientMessage{Type: MsgCreateRoom}); err != nil {
		return "", err
	}
	reply, err := l.awaitReply(ctx, MsgCreateRoom)
	if err != nil {
		return "", err
	}
	return reply.Code, nil
}

// JoinRoom joins an existing room and returns the assigned role.
func (l *Lobby) JoinRoom(ctx context.Context, code string) (room.Role, error) {
	if err := l.t.Send(ctx, ClientMessage{Type: MsgJoinRoom, Code: code}); err != nil {
		return "", err
	}
	reply, err := l.awaitReply(ctx, MsgJoinRoom)
	if err != nil {
		return "", err
	}
	return reply.Role, nil
}

func (l *Lobby) awaitReply(ctx context.Context, kind string) (ServerMessage, error) {
	for {
		msg, err := l.t.Recv(ctx)
		if err != nil {
			return msg, err
		}
		switch msg.Type {
		case kind:
			if !msg.OK() {
				return msg, fmt.Errorf("%s rejected: %s", kind, msg.Message)
			}
			return msg, nil
		case MsgError:
			return msg, fmt.Errorf("%s rejected: %s", kind, msg.Message)
		default:
			l.held = append(l.held, msg)
		}
	}
}

// Pending returns the messages held past game_start, leaving none behind.
func (l *Lobby) Pending() []ServerMessage {
	held := l.held
	l.held = nil
	return held
}

// WaitStart blocks until the room is full and the relay signals game_start.
func (l *Lobby) WaitStart(ctx context.Context) (ServerMessage, error) {
	for {
		msg, err := l.recv(ctx)
		if err != nil {
			return msg, err
		}
		switch msg.Type {
		case MsgGameStart:
			return msg, nil
		case MsgPlayerLeft:
			return msg, game.ErrPeerLeft
		}
	}
}
