package handlers

import (
	"html/template"
	"net/http"

	"picks-dashboard/logging"
	"picks-dashboard/services"
)

// DashboardHandler serves the dashboard page and its JSON API
type DashboardHandler struct {
	renderer
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(templates *template.Template, dashboardService *services.DashboardService, errors ErrorCounter) *DashboardHandler {
	return &DashboardHandler{
		renderer: renderer{
			templates: templates,
			errors:    errors,
			logger:    logging.WithPrefix("DashboardHandler"),
		},
		dashboardService: dashboardService,
	}
}

// GetDashboard renders the dashboard for ?date=&dim=&days=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	date, dim, days := dashboardParams(r, h.dashboardService.Config().DefaultTrendDays)

	view, err := h.dashboardService.Build(r.Context(), date, dim, days)
	if err != nil {
		h.logger.Errorf("Error building dashboard: %v", err)
		h.render(w, http.StatusInternalServerError, "error", "Unable to load picks")
		return
	}

	h.render(w, http.StatusOK, "dashboard", view)
}

// GetDashboardAPI returns the dashboard view model as JSON
func (h *DashboardHandler) GetDashboardAPI(w http.ResponseWriter, r *http.Request) {
	date, dim, days := dashboardParams(r, h.dashboardService.Config().DefaultTrendDays)

	view, err := h.dashboardService.Build(r.Context(), date, dim, days)
	if err != nil {
		h.logger.Errorf("Error building dashboard: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Unable to load picks")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// GetTrendAPI returns the trend series for ?dim=&days=
func (h *DashboardHandler) GetTrendAPI(w http.ResponseWriter, r *http.Request) {
	_, dim, days := dashboardParams(r, h.dashboardService.Config().DefaultTrendDays)

	points, err := h.dashboardService.Trend(r.Context(), dim, days)
	if err != nil {
		h.logger.Errorf("Error building trend: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Unable to load picks")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Dimension string      `json:"dimension"`
		Days      int         `json:"days"`
		Points    interface{} `json:"points"`
	}{string(dim), days, points})
}

// GetPicksAPI returns the resolved window and its records for ?date=
func (h *DashboardHandler) GetPicksAPI(w http.ResponseWriter, r *http.Request) {
	daily, err := h.dashboardService.DailyPicks(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Errorf("Error loading picks: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Unable to load picks")
		return
	}

	writeJSON(w, http.StatusOK, daily)
}
