package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eldtechnologies/dispatch/internal/agents"
	"github.com/eldtechnologies/dispatch/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	router  *agents.Router
	kv      store.KV
	records store.RecordStore
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(router *agents.Router, kv store.KV, records store.RecordStore) *Handler {
	return &Handler{router: router, kv: kv, records: records}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
