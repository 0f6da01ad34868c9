package handler

import (
	"net/http"

	"github.com/aula-labs/tutorbot/internal/session"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store    *session.Store
	provider string
}

// NewHealthHandler creates a health handler. provider is the name of the
// configured generation provider, or "" in degraded mode.
func NewHealthHandler(store *session.Store, provider string) *HealthHandler {
	return &HealthHandler{
		store:    store,
		provider: provider,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	provider := h.provider
	if provider == "" {
		provider = "none"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ready",
		"provider":      provider,
		"conversations": h.store.Len(),
	})
}
