package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"picks-dashboard/database"
	"picks-dashboard/logging"
	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// DashboardConfig holds the stats engine parameters used by the services
type DashboardConfig struct {
	Location         *time.Location
	Overshoot        time.Duration
	DefaultTrendDays int
	HighConfidence   int
	FetchTimeout     time.Duration
}

// DefaultDashboardConfig returns the New York dashboard defaults
func DefaultDashboardConfig() DashboardConfig {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return DashboardConfig{
		Location:         loc,
		Overshoot:        stats.DefaultOvershoot,
		DefaultTrendDays: stats.DefaultTrendDays,
		HighConfidence:   80,
		FetchTimeout:     database.MediumTimeout,
	}
}

// LoadRecorder receives the size of every dashboard load
type LoadRecorder interface {
	SetPicksLoaded(set string, count int)
	IncDashboardRender(dimension string)
}

// DashboardView is everything the dashboard page and API render
type DashboardView struct {
	Window      stats.DayWindow `json:"window"`
	Date        string          `json:"date"`
	DisplayDate string          `json:"displayDate"`
	PrevDate    string          `json:"prevDate"`
	NextDate    string          `json:"nextDate"`
	IsToday     bool            `json:"isToday"`

	Dimension    models.Dimension   `json:"dimension"`
	Dimensions   []models.Dimension `json:"-"`
	TrendDays    int                `json:"trendDays"`
	TrendWindows []int              `json:"-"`

	Comparison stats.Comparison    `json:"stats"`
	Trend      []stats.TrendPoint  `json:"trend"`
	Picks      []models.PickRecord `json:"picks"`

	HighConfidence int       `json:"highConfidence"`
	PredictedCount int       `json:"predictedCount"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// PendingCount returns the number of matches still waiting for a prediction
func (v *DashboardView) PendingCount() int {
	return len(v.Picks) - v.PredictedCount
}

// DailyPicksView is the resolved window with its records
type DailyPicksView struct {
	Window stats.DayWindow     `json:"window"`
	Picks  []models.PickRecord `json:"picks"`
}

// DashboardService loads the day's picks and the historical set and runs the stats engine over them
type DashboardService struct {
	store    database.PickStore
	clock    stats.Clock
	config   DashboardConfig
	recorder LoadRecorder
	logger   *logging.Logger
}

// NewDashboardService creates a dashboard service. A nil clock uses the system clock.
func NewDashboardService(store database.PickStore, clock stats.Clock, config DashboardConfig) *DashboardService {
	if clock == nil {
		clock = stats.SystemClock{}
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.DefaultTrendDays <= 0 {
		config.DefaultTrendDays = stats.DefaultTrendDays
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = database.MediumTimeout
	}
	return &DashboardService{
		store:  store,
		clock:  clock,
		config: config,
		logger: logging.WithPrefix("Dashboard"),
	}
}

// SetRecorder attaches a recorder for load sizes
func (s *DashboardService) SetRecorder(recorder LoadRecorder) {
	s.recorder = recorder
}

// Config returns the service configuration
func (s *DashboardService) Config() DashboardConfig {
	return s.config
}

// ResolveWindow resolves a date parameter in the dashboard time zone
func (s *DashboardService) ResolveWindow(date string) stats.DayWindow {
	window := stats.ResolveDayWindow(date, s.config.Location, s.clock, s.config.Overshoot)
	if trimmed := strings.TrimSpace(date); trimmed != "" && trimmed != window.Date {
		s.logger.Debugf("Invalid date %q, using %s", date, window.Date)
	}
	return window
}

// TrendDays validates a requested trend window against the selectable ones
func (s *DashboardService) TrendDays(days int) int {
	for _, w := range stats.TrendWindows {
		if w == days {
			return days
		}
	}
	return s.config.DefaultTrendDays
}

// Build loads the window's picks and the historical picks concurrently and
// computes the comparison and the trend. Either store failure fails the build.
func (s *DashboardService) Build(ctx context.Context, date string, dim models.Dimension, days int) (*DashboardView, error) {
	window := s.ResolveWindow(date)
	days = s.TrendDays(days)

	ctx, cancel := database.ContextWithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	var daily, historical []models.PickRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.store.FindDailyPicks(gctx, window)
		if err != nil {
			return fmt.Errorf("failed to load picks for %s: %w", window.Date, err)
		}
		daily = records
		return nil
	})
	g.Go(func() error {
		records, err := s.store.FindHistoricalPicks(gctx)
		if err != nil {
			return fmt.Errorf("failed to load historical picks: %w", err)
		}
		historical = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := stats.Today(s.config.Location, s.clock).Format(stats.DateLayout)
	view := &DashboardView{
		Window:         window,
		Date:           window.Date,
		DisplayDate:    displayDate(window, s.config.Location),
		PrevDate:       window.Prev(),
		NextDate:       window.Next(),
		IsToday:        window.Date == today,
		Dimension:      dim,
		Dimensions:     models.Dimensions,
		TrendDays:      days,
		TrendWindows:   stats.TrendWindows,
		Comparison:     stats.Compare(daily, historical, dim),
		Trend:          stats.BuildTrend(historical, dim, days, s.config.Location, s.clock),
		Picks:          daily,
		HighConfidence: s.config.HighConfidence,
		GeneratedAt:    s.clock.Now().UTC(),
	}
	for i := range daily {
		if daily[i].HasPrediction() {
			view.PredictedCount++
		}
	}

	if s.recorder != nil {
		s.recorder.SetPicksLoaded("daily", len(daily))
		s.recorder.SetPicksLoaded("historical", len(historical))
		s.recorder.IncDashboardRender(string(dim))
	}

	s.logger.Debugf("Built %s %s: %d picks, %d historical, %d trend points",
		window.Date, dim, len(daily), len(historical), len(view.Trend))
	return view, nil
}

// Trend loads the historical picks and builds the trend series
func (s *DashboardService) Trend(ctx context.Context, dim models.Dimension, days int) ([]stats.TrendPoint, error) {
	ctx, cancel := database.ContextWithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	historical, err := s.store.FindHistoricalPicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load historical picks: %w", err)
	}
	return stats.BuildTrend(historical, dim, s.TrendDays(days), s.config.Location, s.clock), nil
}

// DailyPicks loads the records of the resolved day
func (s *DashboardService) DailyPicks(ctx context.Context, date string) (*DailyPicksView, error) {
	window := s.ResolveWindow(date)

	ctx, cancel := database.ContextWithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	records, err := s.store.FindDailyPicks(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for %s: %w", window.Date, err)
	}
	return &DailyPicksView{Window: window, Picks: records}, nil
}

// displayDate formats the window date as "Sunday, March 10, 2024"
func displayDate(window stats.DayWindow, loc *time.Location) string {
	day, err := time.ParseInLocation(stats.DateLayout, window.Date, loc)
	if err != nil {
		return window.Date
	}
	return day.Format("Monday, January 2, 2006")
}
