package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
)

const sseKeepaliveInterval = 15 * time.Second

type cloneRequest struct {
	URL string `json:"url"`
}

// cloneRepo streams clone progress as server-sent events. The stream
// carries zero or more progress events followed by exactly one complete
// or error event.
func (h *Handler) cloneRepo(w http.ResponseWriter, r *http.Request) {
	var req cloneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, fmt.Errorf("url is required: %w", domain.ErrInvalid))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := h.clone.Clone(r.Context(), req.URL)

	setSSEHeaders(w)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			writeSSEEvent(w, event.Type, event)
			flusher.Flush()
		}
	}
}

// streamSession relays a session's live status and output events over
// SSE until the client disconnects.
func (h *Handler) streamSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	msgs, unsubscribe := h.hub.Subscribe(id)
	defer unsubscribe()

	setSSEHeaders(w)

	// Current status first, so subscribers never start blind.
	writeSSEEvent(w, "status", domain.NewStatusMessage(id, session.Status))
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			writeSSEEvent(w, msg.Type, msg)
			flusher.Flush()
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func writeSSEEvent(w io.Writer, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		logging.Logger.Error("Failed to marshal SSE event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
