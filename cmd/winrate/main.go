package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	_ "time/tzdata"

	"picks-dashboard/config"
	"picks-dashboard/database"
	"picks-dashboard/logging"
	"picks-dashboard/models"
	"picks-dashboard/services"
	"picks-dashboard/stats"
)

func main() {
	date := flag.String("date", "", "day to report, YYYY-MM-DD (default today)")
	dim := flag.String("dim", "spread", "dimension: spread, total or combined")
	days := flag.Int("days", 0, "trend window in days: 7, 30 or 90 (default from config)")
	backend := flag.String("backend", "", "override STORE_BACKEND")
	asJSON := flag.Bool("json", false, "print the dashboard view as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Configuration error: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	ctx, cancel := database.WithLongTimeout(context.Background())
	defer cancel()

	clock := stats.SystemClock{}
	var store database.PickStore
	if cfg.Store.Backend == config.StoreBackendMemory {
		store = database.NewMemoryPickStore(database.SampleRecords(stats.Today(cfg.Location(), clock), 30))
	} else {
		store, err = database.Open(ctx, cfg.ToOpenOptions())
		if err != nil {
			logging.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
		}
	}
	defer store.Close()

	svc := services.NewDashboardService(store, clock, cfg.ToDashboardConfig())
	view, err := svc.Build(ctx, *date, models.ParseDimension(*dim), *days)
	if err != nil {
		logging.Fatalf("Failed to build report: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			logging.Fatalf("Failed to encode report: %v", err)
		}
		return
	}
	if err := writeReport(os.Stdout, view); err != nil {
		logging.Fatalf("Failed to write report: %v", err)
	}
}

// writeReport prints the comparison, the trend and the day's picks as aligned tables
func writeReport(out io.Writer, view *services.DashboardView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	dim := view.Dimension.Label()

	fmt.Fprintf(w, "%s (%s)\n\n", view.DisplayDate, view.Window.Date)
	fmt.Fprintln(w, "SET\tRECORD\tWIN RATE")
	fmt.Fprintf(w, "Daily %s\t%s\t%d%%\n", dim, view.Comparison.Daily.Record(), view.Comparison.Daily.Rate)
	fmt.Fprintf(w, "Season %s\t%s\t%d%%\n", dim, view.Comparison.Season.Record(), view.Comparison.Season.Rate)

	fmt.Fprintf(w, "\nTREND (%d days)\tWINS\tTOTAL\tWIN RATE\n", view.TrendDays)
	if len(view.Trend) == 0 {
		fmt.Fprintln(w, "no settled picks\t\t\t")
	}
	for _, p := range view.Trend {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\n", p.Date, p.Wins, p.Total, p.WinRate)
	}

	fmt.Fprintf(w, "\nMATCH\tPICK\tCONFIDENCE\tSPREAD\tTOTAL\n")
	for _, r := range view.Picks {
		if !r.HasPrediction() || r.Match == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.Match.Matchup(), r.RecommendedTeam.String(), r.ConfidenceScore,
			stats.Classify(r, models.DimensionSpread), stats.Classify(r, models.DimensionTotal))
	}
	fmt.Fprintf(w, "\n%d predicted, %d pending analysis\n", view.PredictedCount, view.PendingCount())

	return w.Flush()
}
