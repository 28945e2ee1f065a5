package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ralphtown/ralphtown/internal/domain"
)

type addRepoRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type branchRequest struct {
	Branch string `json:"branch"`
}

type commitRequest struct {
	Message string `json:"message"`
}

func (h *Handler) listRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repos.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func (h *Handler) addRepo(w http.ResponseWriter, r *http.Request) {
	var req addRepoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	repo, err := h.repos.Add(r.Context(), req.Path, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}

func (h *Handler) getRepo(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repos.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

func (h *Handler) deleteRepo(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) scanRepos(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("path")
	if root == "" {
		writeError(w, fmt.Errorf("path query parameter is required: %w", domain.ErrInvalid))
		return
	}

	repos, err := h.repos.Scan(root, intQuery(r, "depth", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func (h *Handler) gitStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.repos.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) gitLog(w http.ResponseWriter, r *http.Request) {
	commits, err := h.repos.Log(r.Context(), r.PathValue("id"), intQuery(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commits)
}

func (h *Handler) gitBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.repos.Branches(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

func (h *Handler) gitCreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Branch == "" {
		writeError(w, fmt.Errorf("branch is required: %w", domain.ErrInvalid))
		return
	}

	out, err := h.repos.CreateBranch(r.Context(), r.PathValue("id"), req.Branch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) gitDiff(w http.ResponseWriter, r *http.Request) {
	deltas, err := h.repos.DiffStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deltas)
}

func (h *Handler) gitCheckout(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Branch == "" {
		writeError(w, fmt.Errorf("branch is required: %w", domain.ErrInvalid))
		return
	}

	out, err := h.repos.Checkout(r.Context(), r.PathValue("id"), req.Branch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) gitPull(w http.ResponseWriter, r *http.Request) {
	out, err := h.repos.Pull(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) gitPush(w http.ResponseWriter, r *http.Request) {
	out, err := h.repos.Push(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) gitCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Message == "" {
		writeError(w, fmt.Errorf("commit message is required: %w", domain.ErrInvalid))
		return
	}

	out, err := h.repos.CommitAll(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) gitReset(w http.ResponseWriter, r *http.Request) {
	out, err := h.repos.ResetHard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// intQuery parses an integer query parameter, falling back when the
// parameter is absent or malformed.
func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
