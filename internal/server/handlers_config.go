package server

import (
	"net/http"
)

type configEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) listConfig(w http.ResponseWriter, r *http.Request) {
	values, err := h.config.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	value, err := h.config.Get(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configEntry{Key: key, Value: value})
}

func (h *Handler) setConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	key := r.PathValue("key")
	if err := h.config.Set(r.Context(), key, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configEntry{Key: key, Value: req.Value})
}

func (h *Handler) deleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.config.Delete(r.Context(), r.PathValue("key")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
