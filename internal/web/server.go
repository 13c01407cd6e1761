package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/net"
	"github.com/peterkuimelis/elementa/internal/room"
)

//go:embed static
var staticFiles embed.FS

// leaveTimeout bounds the room cleanup after a connection drops.
const leaveTimeout = 5 * time.Second

// CardInfo is the JSON representation of a catalog entry for /api/cards.
type CardInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Level int    `json:"level"`
	Beats string `json:"beats"`
}

// Config configures the relay server.
type Config struct {
	Manager *room.Manager
	// DecksFile is served by /api/decks. Empty serves the standard deck.
	DecksFile string
	Logger    *slog.Logger
}

// Server is the room relay: a websocket endpoint plus a small JSON API.
type Server struct {
	manager   *room.Manager
	hub       *Hub
	decksFile string
	mux       *http.ServeMux
	logger    *slog.Logger
}

// NewServer creates the relay server and installs its hub as the
// manager's notifier.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Manager == nil {
		return nil, errors.New("web: nil room manager")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		manager:   cfg.Manager,
		hub:       NewHub(logger),
		decksFile: cfg.DecksFile,
		mux:       http.NewServeMux(),
		logger:    logger.With("component", "relay"),
	}
	s.manager.SetNotifier(s.hub)
	s.setupRoutes()
	return s, nil
}

// Hub returns the server's connection hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /api/rooms/{code}", s.handleRoom)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var cards []CardInfo
	for _, row := range game.Catalog {
		for _, a := range row {
			cards = append(cards, CardInfo{
				Name:  a.Name,
				Title: a.Title,
				Type:  a.Type.String(),
				Level: a.Level,
				Beats: a.Type.Beats().String(),
			})
		}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := loadDecks(s.decksFile)
	if err != nil {
		s.logger.Error("load decks", "file", s.decksFile, "error", err)
		http.Error(w, "could not load decks file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.manager.Get(r.PathValue("code"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": room.ErrRoomNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // LAN play from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	id := uuid.NewString()
	c := s.hub.register(id)
	logger := s.logger.With("conn", id)
	logger.Debug("connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.writeLoop(ctx, conn, c, logger)

	defer func() {
		leaveCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), leaveTimeout)
		defer stop()
		if err := s.manager.Leave(leaveCtx, id); err != nil && !errors.Is(err, room.ErrNotInRoom) {
			logger.Warn("leave room", "error", err)
		}
		s.hub.unregister(id)
		logger.Debug("disconnected")
	}()

	for {
		var msg net.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		s.dispatch(ctx, id, msg)
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, c *client, logger *slog.Logger) {
	for {
		select {
		case msg := <-c.out:
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				logger.Debug("websocket write", "error", err)
				conn.CloseNow()
				return
			}
		case <-c.closed:
			conn.Close(websocket.StatusPolicyViolation, "too slow")
			return
		case <-ctx.Done():
			return
		}
	}
}

// dispatch applies one client message to the room manager. Replies to
// create_room and join_room are queued behind any notifications the
// operation produced.
func (s *Server) dispatch(ctx context.Context, id string, msg net.ClientMessage) {
	switch msg.Type {
	case net.MsgCreateRoom:
		rm, err := s.manager.CreateRoom(ctx, id)
		if err != nil {
			s.hub.send(id, net.Rejected(net.MsgCreateRoom, err))
			return
		}
		s.hub.send(id, net.Accepted(net.MsgCreateRoom, rm.Code, room.RoleHost))

	case net.MsgJoinRoom:
		role, err := s.manager.JoinRoom(ctx, id, msg.Code)
		if err != nil {
			s.hub.send(id, net.Rejected(net.MsgJoinRoom, err))
			return
		}
		s.hub.send(id, net.Accepted(net.MsgJoinRoom, room.NormalizeCode(msg.Code), role))

	case net.MsgGameEvent:
		if err := s.manager.RelayGameEvent(id, msg.Event); err != nil {
			s.hub.send(id, net.ServerMessage{Type: net.MsgError, Message: err.Error()})
		}

	case net.MsgEndTurn:
		if err := s.manager.EndTurn(id, msg.CurrentTurn, msg.TurnNumber); err != nil {
			s.hub.send(id, net.ServerMessage{Type: net.MsgError, Message: err.Error()})
		}

	default:
		s.hub.send(id, net.ServerMessage{Type: net.MsgError, Message: net.ErrUnknownMessage.Error() + ": " + msg.Type})
	}
}

// ListenAndServe serves the relay until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("relay listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
