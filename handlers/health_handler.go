package handlers

import (
	"net/http"
	"time"

	"picks-dashboard/database"
	"picks-dashboard/logging"
)

// HealthHandler reports whether the pick store is reachable
type HealthHandler struct {
	store   database.PickStore
	backend string
	started time.Time
}

// NewHealthHandler creates a health handler for the named backend
func NewHealthHandler(store database.PickStore, backend string) *HealthHandler {
	return &HealthHandler{store: store, backend: backend, started: time.Now()}
}

type healthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Error   string `json:"error,omitempty"`
	Uptime  string `json:"uptime"`
	Checked int64  `json:"checked"`
}

// GetHealth pings the store and answers 200 or 503
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := database.WithShortTimeout(r.Context())
	defer cancel()

	resp := healthResponse{
		Status:  "ok",
		Store:   h.backend,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checked: time.Now().Unix(),
	}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logging.Warnf("Health check failed: %v", err)
		resp.Status = "unavailable"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}
