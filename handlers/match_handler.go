package handlers

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"picks-dashboard/logging"
	"picks-dashboard/services"
)

// MatchHandler serves the match detail page
type MatchHandler struct {
	renderer
	matchService *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(templates *template.Template, matchService *services.MatchService, errors ErrorCounter) *MatchHandler {
	return &MatchHandler{
		renderer: renderer{
			templates: templates,
			errors:    errors,
			logger:    logging.WithPrefix("MatchHandler"),
		},
		matchService: matchService,
	}
}

// GetMatch renders /match/{id}, or the 404 page when the match has no prediction
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	view, err := h.matchService.Detail(r.Context(), matchID)
	if err != nil {
		h.logger.Errorf("Error loading match %s: %v", matchID, err)
		h.render(w, http.StatusInternalServerError, "error", "Unable to load picks")
		return
	}
	if view == nil {
		h.render(w, http.StatusNotFound, "not_found", nil)
		return
	}

	h.render(w, http.StatusOK, "match_detail", view)
}
