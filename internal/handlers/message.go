package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eldtechnologies/dispatch/internal/agents"
)

// maxMessageLen bounds inbound message size.
const maxMessageLen = 8 * 1024

// MessageRequest is the body for POST /message.
type MessageRequest struct {
	WorkspaceID  string               `json:"workspace_id"`
	UserID       string               `json:"user_id"`
	Message      string               `json:"message"`
	Business     *agents.BusinessInfo `json:"business,omitempty"`
	Integrations *agents.Integrations `json:"integrations,omitempty"`
}

// HandleMessage is the single orchestration entry point: it routes the
// inbound message and returns the responder's reply. Routing never fails
// hard, so any well-formed request gets a 200 with a Reply.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	switch {
	case req.WorkspaceID == "":
		h.Error(w, http.StatusBadRequest, "workspace_id is required")
		return
	case req.UserID == "":
		h.Error(w, http.StatusBadRequest, "user_id is required")
		return
	case req.Message == "":
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	case len(req.Message) > maxMessageLen:
		h.Error(w, http.StatusBadRequest, "message too long")
		return
	}

	reply := h.router.Route(r.Context(), req.Message, agents.Context{
		WorkspaceID:  req.WorkspaceID,
		UserID:       req.UserID,
		Business:     req.Business,
		Integrations: req.Integrations,
	})

	h.JSON(w, http.StatusOK, reply)
}

// Capabilities returns the static variant capability labels for UI display.
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.router.Capabilities())
}
