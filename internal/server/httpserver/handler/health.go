package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The store is ready once the snapshot
// has been recovered.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code, "store not recovered", nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ready",
		"counts": h.engine.Counts(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
