package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
)

// errorBody is the JSON error envelope returned by every failing route
type errorBody struct {
	Code      string   `json:"code"`
	Error     string   `json:"error"`
	HelpSteps []string `json:"helpSteps,omitempty"`
}

// mapError translates domain errors into an HTTP status and envelope.
// Conflict-class failures (busy repo, already running, nothing to
// cancel) map to 409; failures the user must fix outside the API
// (agent binary missing, clone auth) map to 424 with help steps.
func mapError(err error) (int, errorBody) {
	var (
		agentErr      *domain.AgentNotFoundError
		busyErr       *domain.RepoBusyError
		cloneErr      *domain.CloneError
		notRunningErr *domain.NotRunningError
		runningErr    *domain.SessionAlreadyRunningError
		spawnErr      *domain.SpawnError
	)

	switch {
	case errors.As(err, &busyErr):
		return http.StatusConflict, errorBody{Code: "repo_busy", Error: busyErr.Error()}
	case errors.As(err, &runningErr):
		return http.StatusConflict, errorBody{Code: "session_already_running", Error: runningErr.Error()}
	case errors.As(err, &notRunningErr):
		return http.StatusConflict, errorBody{Code: "not_running", Error: notRunningErr.Error()}
	case errors.As(err, &agentErr):
		return http.StatusFailedDependency, errorBody{
			Code:      "agent_not_found",
			Error:     agentErr.Error(),
			HelpSteps: agentErr.HelpSteps,
		}
	case errors.As(err, &cloneErr):
		body := errorBody{Code: string(cloneErr.Kind), Error: cloneErr.Error(), HelpSteps: cloneErr.HelpSteps}
		if len(cloneErr.HelpSteps) > 0 {
			return http.StatusFailedDependency, body
		}
		return http.StatusInternalServerError, body
	case errors.As(err, &spawnErr):
		return http.StatusInternalServerError, errorBody{Code: "spawn_failed", Error: spawnErr.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Code: "not_found", Error: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody{Code: "conflict", Error: err.Error()}
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, errorBody{Code: "bad_request", Error: err.Error()}
	}

	return http.StatusInternalServerError, errorBody{Code: "internal_error", Error: err.Error()}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		logging.Logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads a request body, folding malformed JSON into the
// bad-request error class.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrInvalid)
	}
	return nil
}
