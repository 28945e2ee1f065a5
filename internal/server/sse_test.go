package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralphtown/ralphtown/internal/domain"
)

type sseEvent struct {
	name string
	data string
}

// parseSSE splits an event-stream body into named events, skipping
// keepalive comments.
func parseSSE(body string) []sseEvent {
	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, ":") {
			continue
		}

		var event sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				event.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				event.data = strings.TrimPrefix(line, "data: ")
			}
		}
		events = append(events, event)
	}
	return events
}

func TestCloneStream(t *testing.T) {
	t.Run("streams progress then complete", func(t *testing.T) {
		h, f := newTestHandler()
		f.clone.events = []domain.CloneEvent{
			{Type: domain.CloneEventProgress, Progress: &domain.CloneProgress{ReceivedObjects: 10, TotalObjects: 100}},
			{Type: domain.CloneEventComplete, Repository: &domain.Repository{ID: "r-1", Name: "widget"}, Message: "Repository cloned successfully"},
		}

		rr := doRequest(t, h, http.MethodPost, "/api/repos/clone", cloneRequest{URL: "git@github.com:acme/widget.git"})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
		assert.Equal(t, []string{"git@github.com:acme/widget.git"}, f.clone.urls)

		events := parseSSE(rr.Body.String())
		require.Len(t, events, 2)
		assert.Equal(t, "progress", events[0].name)
		assert.Equal(t, "complete", events[1].name)

		var complete domain.CloneEvent
		require.NoError(t, json.Unmarshal([]byte(events[1].data), &complete))
		require.NotNil(t, complete.Repository)
		assert.Equal(t, "r-1", complete.Repository.ID)
	})

	t.Run("requires url", func(t *testing.T) {
		h, f := newTestHandler()

		rr := doRequest(t, h, http.MethodPost, "/api/repos/clone", cloneRequest{URL: "   "})

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Empty(t, f.clone.urls)
	})

	t.Run("failure ends with error event", func(t *testing.T) {
		h, f := newTestHandler()
		f.clone.events = []domain.CloneEvent{
			{
				Type:      domain.CloneEventError,
				Message:   "SSH authentication failed",
				HelpSteps: []string{"Add your SSH key to the agent"},
			},
		}

		rr := doRequest(t, h, http.MethodPost, "/api/repos/clone", cloneRequest{URL: "git@github.com:acme/widget.git"})

		require.Equal(t, http.StatusOK, rr.Code)

		events := parseSSE(rr.Body.String())
		require.Len(t, events, 1)
		assert.Equal(t, "error", events[0].name)

		var failure domain.CloneEvent
		require.NoError(t, json.Unmarshal([]byte(events[0].data), &failure))
		assert.Equal(t, "SSH authentication failed", failure.Message)
		assert.NotEmpty(t, failure.HelpSteps)
	})
}

func TestStreamSession(t *testing.T) {
	t.Run("sends current status then live events", func(t *testing.T) {
		h, f := newTestHandler()
		f.sessions.session = &domain.Session{ID: "s-1", Status: domain.StatusRunning}
		f.hub.ch <- domain.NewOutputMessage("s-1", domain.StreamStdout, "building")
		f.hub.ch <- domain.NewStatusMessage("s-1", domain.StatusCompleted)
		close(f.hub.ch)

		rr := doRequest(t, h, http.MethodGet, "/api/sessions/s-1/stream", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
		assert.Equal(t, []string{"s-1"}, f.hub.subscribed)
		assert.Equal(t, 1, f.hub.unsubscribed)

		events := parseSSE(rr.Body.String())
		require.Len(t, events, 3)
		assert.Equal(t, "status", events[0].name)
		assert.Equal(t, "output", events[1].name)
		assert.Equal(t, "status", events[2].name)

		var snapshot domain.ServerMessage
		require.NoError(t, json.Unmarshal([]byte(events[0].data), &snapshot))
		assert.Equal(t, domain.StatusRunning, snapshot.Status)

		var terminal domain.ServerMessage
		require.NoError(t, json.Unmarshal([]byte(events[2].data), &terminal))
		assert.Equal(t, domain.StatusCompleted, terminal.Status)
	})

	t.Run("unknown session gets not found", func(t *testing.T) {
		h, f := newTestHandler()
		f.sessions.err = fmt.Errorf("session s-9: %w", domain.ErrNotFound)

		rr := doRequest(t, h, http.MethodGet, "/api/sessions/s-9/stream", nil)

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Empty(t, f.hub.subscribed)
	})
}
