package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"picks-dashboard/logging"
	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// ErrorCounter counts failed template executions
type ErrorCounter interface {
	IncRenderError()
}

// renderer executes page templates into a buffer so a failed render never
// leaves a half-written page
type renderer struct {
	templates *template.Template
	errors    ErrorCounter
	logger    *logging.Logger
}

func (r *renderer) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Errorf("Error executing template %s: %v", name, err)
		if r.errors != nil {
			r.errors.IncRenderError()
		}
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("Error encoding JSON response: %v", err)
	}
}

// writeJSONError writes {"error": message}
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// dashboardParams reads the date, dimension and trend window query parameters
func dashboardParams(r *http.Request, defaultDays int) (string, models.Dimension, int) {
	query := r.URL.Query()
	dim := models.ParseDimension(query.Get("dim"))
	days := defaultDays
	if value := query.Get("days"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			days = parsed
		}
	}
	return query.Get("date"), dim, stats.ParseTrendWindow(strconv.Itoa(days), defaultDays)
}
