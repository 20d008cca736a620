package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"picks-dashboard/logging"
	"picks-dashboard/middleware"
)

// Routes holds the handlers and settings mounted by NewRouter
type Routes struct {
	Dashboard *DashboardHandler
	Match     *MatchHandler
	Health    *HealthHandler

	// Metrics is mounted at /metrics when set
	Metrics http.Handler
	// Observer receives every routed request when set
	Observer middleware.RequestObserver

	StaticDir      string
	AllowedOrigins []string
	BehindProxy    bool
	Logger         *logging.Logger
}

// NewRouter builds the application router
func NewRouter(routes Routes) *mux.Router {
	logger := routes.Logger
	if logger == nil {
		logger = logging.WithPrefix("HTTP")
	}

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(routes.BehindProxy))
	r.Use(middleware.RequestLogger(logger))
	if routes.Observer != nil {
		r.Use(middleware.Instrument(routes.Observer))
	}

	// Pages
	r.HandleFunc("/", routes.Dashboard.GetDashboard).Methods("GET")
	r.HandleFunc("/match/{id}", routes.Match.GetMatch).Methods("GET")

	// JSON API, open to the configured origins
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.CORS(routes.AllowedOrigins))
	api.HandleFunc("/dashboard", routes.Dashboard.GetDashboardAPI).Methods("GET", "OPTIONS")
	api.HandleFunc("/trend", routes.Dashboard.GetTrendAPI).Methods("GET", "OPTIONS")
	api.HandleFunc("/picks", routes.Dashboard.GetPicksAPI).Methods("GET", "OPTIONS")

	// Operations
	r.HandleFunc("/healthz", routes.Health.GetHealth).Methods("GET")
	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods("GET")
	}

	if routes.StaticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(routes.StaticDir))))
	}

	return r
}
