package broadcast

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// Handler upgrades HTTP requests to websocket connections subscribed to a Hub.
// A connection lives until the peer goes away, stops answering pings, or the
// hub is closed. Clients receive only events published while connected.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler returns a websocket handler for hub. allowedOrigins lists the
// cross-origin pages permitted to connect; "*" allows any origin and
// same-origin requests are always allowed.
func NewHandler(hub *Hub, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With("component", "websocket"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.logger.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	sub := h.hub.Subscribe(DefaultBuffer)
	h.logger.Info("client connected", "remote_addr", r.RemoteAddr)

	go h.writeLoop(conn, sub)
	h.readLoop(conn)

	sub.Close()
	h.logger.Info("client disconnected", "remote_addr", r.RemoteAddr)
}

// readLoop discards client messages and keeps the read deadline fresh on
// pongs. It returns when the connection fails or is closed.
func (h *Handler) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

// writeLoop forwards events to the connection and sends keepalive pings.
func (h *Handler) writeLoop(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.Messages():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return slices.ContainsFunc(allowed, func(a string) bool {
			return strings.EqualFold(strings.TrimSuffix(a, "/"), origin)
		})
	}
}
