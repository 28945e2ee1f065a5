package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// The API is loopback-only, so any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessionSocket relays a session's live events over a WebSocket. The
// client is write-only from the server's perspective; inbound frames
// are read solely to detect the close handshake.
func (h *Handler) sessionSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, fmt.Errorf("sessionId query parameter is required: %w", domain.ErrInvalid))
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warn("WebSocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close()

	logging.Logger.Debug("WebSocket client connected", "session_id", sessionID)

	msgs, unsubscribe := h.hub.Subscribe(sessionID)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Current status first, so subscribers never start blind.
	if err := writeSocketJSON(conn, domain.NewStatusMessage(sessionID, session.Status)); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := writeSocketJSON(conn, msg); err != nil {
				return
			}
		}
	}
}

func writeSocketJSON(conn *websocket.Conn, msg domain.ServerMessage) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
