package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler exposes the websocket endpoints.
type WebSocketHandler struct {
	manager *ConnectionManager
}

// NewWebSocketHandler creates the handler.
func NewWebSocketHandler(manager *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// RegisterRoutes mounts the websocket routes on mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", h.handleDraftConnection)
	mux.HandleFunc("/ws/stats", h.handleStats)
}

// handleDraftConnection upgrades a client to a websocket watching one draft.
// The draft is identified by the draft_id query parameter.
func (h *WebSocketHandler) handleDraftConnection(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("draft_id")
	if raw == "" {
		http.Error(w, "missing draft_id parameter", http.StatusBadRequest)
		return
	}
	draftID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid draft_id parameter", http.StatusBadRequest)
		return
	}

	if err := h.manager.Upgrade(w, r, draftID); err != nil {
		// Upgrade writes the HTTP error itself on failure.
		log.Error().Err(err).Str("draft_id", raw).Msg("websocket upgrade failed")
	}
}

// handleStats reports per-draft connection counts for one draft.
func (h *WebSocketHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("draft_id")
	if raw == "" {
		http.Error(w, "missing draft_id parameter", http.StatusBadRequest)
		return
	}
	draftID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid draft_id parameter", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"draft_id":    draftID.String(),
		"connections": h.manager.ConnectionCount(draftID),
	})
}
