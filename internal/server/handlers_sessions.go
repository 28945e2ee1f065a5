package server

import (
	"fmt"
	"net/http"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
)

type createSessionRequest struct {
	Name   string `json:"name"`
	RepoID string `json:"repoId"`
}

type runRequest struct {
	Prompt string `json:"prompt"`
}

type addMessageRequest struct {
	Content string             `json:"content"`
	Role    domain.MessageRole `json:"role"`
}

// sessionActionResponse acknowledges a run or cancel request
type sessionActionResponse struct {
	Message   string               `json:"message"`
	SessionID string               `json:"sessionId"`
	Status    domain.SessionStatus `json:"status"`
}

// sessionDetails is a session with its conversation history inlined
type sessionDetails struct {
	domain.Session
	Messages []domain.Message `json:"messages"`
}

type logsResponse struct {
	Logs      []domain.OutputLog `json:"logs"`
	SessionID string             `json:"sessionId"`
	Total     int                `json:"total"`
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context(), r.URL.Query().Get("repoId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.RepoID == "" {
		writeError(w, fmt.Errorf("repoId is required: %w", domain.ErrInvalid))
		return
	}

	session, err := h.sessions.Create(r.Context(), req.RepoID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) activeSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": h.sessions.Active()})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	session, messages, err := h.sessions.GetWithMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, sessionDetails{Session: *session, Messages: messages})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) runSession(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if err := h.sessions.Run(r.Context(), id, req.Prompt); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionActionResponse{
		Message:   "Agent process started",
		SessionID: id,
		Status:    domain.StatusRunning,
	})
}

func (h *Handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Cancel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionActionResponse{
		Message:   "Agent process cancelled",
		SessionID: id,
		Status:    domain.StatusCancelled,
	})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.sessions.Messages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) addMessage(w http.ResponseWriter, r *http.Request) {
	var req addMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	message, err := h.sessions.AddMessage(r.Context(), r.PathValue("id"), req.Role, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

func (h *Handler) sessionLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	q := ports.OutputLogQuery{
		Limit:     intQuery(r, "limit", 0),
		Offset:    intQuery(r, "offset", 0),
		SessionID: id,
	}
	if raw := r.URL.Query().Get("stream"); raw != "" {
		stream := domain.OutputStream(raw)
		if stream != domain.StreamStdout && stream != domain.StreamStderr {
			writeError(w, fmt.Errorf("unknown stream %q: %w", raw, domain.ErrInvalid))
			return
		}
		q.Stream = stream
	}

	logs, err := h.sessions.Output(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []domain.OutputLog{}
	}
	writeJSON(w, http.StatusOK, logsResponse{Logs: logs, SessionID: id, Total: len(logs)})
}
