package gateway

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/crosswirehq/crosswire/internal/identity"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
	"github.com/crosswirehq/crosswire/internal/registry"
	"github.com/crosswirehq/crosswire/internal/room"
)

const (
	// writeWait is the per-frame write deadline
	writeWait = 10 * time.Second

	// pongWait is how long a connection survives without a pong
	pongWait = 60 * time.Second

	// pingPeriod keeps pings ahead of the pong deadline
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 4096

	// outboxSize bounds the per-connection outbound queue. Overflow drops
	// the oldest queued frame; persistent overflow kicks the connection.
	outboxSize     = 256
	overflowKickAt = 32
)

// Gateway upgrades HTTP requests to websocket connections, authenticates
// them, and binds each one to its room's actor. It owns no room state; it
// only shuttles frames between the socket and the actor inbox.
type Gateway struct {
	registry *registry.Registry
	verifier identity.Verifier
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New creates a gateway backed by the given registry and token verifier
func New(reg *registry.Registry, verifier identity.Verifier, logger *slog.Logger) *Gateway {
	return &Gateway{
		registry: reg,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Token auth gates the connection; origin is not restricted
				return true
			},
		},
		logger: logger,
	}
}

// ServeWS handles GET /ws/{code}. The token comes from the Authorization
// header or, since browser websocket clients cannot set headers, the
// `token` query parameter.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	ident, err := g.verifier.Verify(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	code := model.RoomCode(mux.Vars(r)["code"])
	actor, err := g.registry.Resolve(code)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &client{
		ws:       ws,
		actor:    actor,
		identity: ident,
		outbox:   make(chan []byte, outboxSize),
		closed:   make(chan struct{}),
		logger: g.logger.With(
			slog.String("room", string(actor.Code())),
			slog.String("player_id", string(ident.PlayerID))),
	}

	g.logger.Info("websocket connected",
		slog.String("room", string(actor.Code())),
		slog.String("player_id", string(ident.PlayerID)))

	go client.writePump()
	go client.readPump()
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return after
		}
	}
	return r.URL.Query().Get("token")
}

// client is one attached websocket. It implements room.Conn: the actor
// calls Send from its own goroutine, so Send never blocks and never
// touches the socket directly.
type client struct {
	ws       *websocket.Conn
	actor    *room.Actor
	identity *identity.Identity
	outbox   chan []byte
	closed   chan struct{}
	overflow int
	logger   *slog.Logger

	closeOnce sync.Once
}

var _ room.Conn = (*client)(nil)

// Send queues one outbound frame. On a full outbox the oldest queued frame
// is dropped to make room; a connection that overflows repeatedly without
// ever draining is kicked.
func (c *client) Send(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.outbox <- data:
		c.overflow = 0
		return true
	default:
	}

	c.overflow++
	if c.overflow >= overflowKickAt {
		c.logger.Warn("outbox persistently full, kicking connection")
		c.Close()
		return false
	}

	select {
	case <-c.outbox:
	default:
	}
	select {
	case c.outbox <- data:
		return true
	default:
	}
	return false
}

// Close asks the write pump to shut the socket down. Safe to call from any
// goroutine, any number of times.
func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *client) readPump() {
	defer func() {
		c.actor.Detach(c, c.identity.PlayerID)
		c.Close()
	}()

	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			// Malformed frames are answered directly; they never reach the
			// room. Enqueued inline because Send's overflow accounting
			// belongs to the actor goroutine.
			if reply, encErr := protocol.EncodeServer(room.ErrorReply(err)); encErr == nil {
				select {
				case c.outbox <- reply:
				default:
				}
			}
			continue
		}

		c.actor.Deliver(c, c.identity.PlayerID, c.identity.DisplayName, msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.outbox:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}

			// Drain whatever else is already queued
			for i := len(c.outbox); i > 0; i-- {
				if err := c.ws.WriteMessage(websocket.TextMessage, <-c.outbox); err != nil {
					c.Close()
					return
				}
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.closed:
			_ = c.ws.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
