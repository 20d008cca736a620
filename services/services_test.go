package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	. "github.com/smartystreets/goconvey/convey"

	"picks-dashboard/database"
	"picks-dashboard/logging"
	"picks-dashboard/models"
	"picks-dashboard/stats"
)

var errStoreDown = errors.New("store down")

// failingStore fails the historical query
type failingStore struct {
	*database.MemoryPickStore
}

func (s failingStore) FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error) {
	return nil, errStoreDown
}

func (s failingStore) FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error) {
	return nil, errStoreDown
}

type fakeRecorder struct {
	loaded  map[string]int
	renders []string
}

func (r *fakeRecorder) SetPicksLoaded(set string, count int) { r.loaded[set] = count }
func (r *fakeRecorder) IncDashboardRender(dim string)        { r.renders = append(r.renders, dim) }

func record(id, date string, start time.Time, predicted bool, spread, total models.Outcome) models.PickRecord {
	r := models.PickRecord{
		MatchID:       "m-" + id,
		MatchDate:     date,
		SpreadOutcome: spread,
		TotalOutcome:  total,
		Match: &models.Match{
			ID:        "m-" + id,
			Date:      date,
			StartTime: start,
			HomeTeam:  models.Team{ID: "1", Code: "BOS"},
			AwayTeam:  models.Team{ID: "2", Code: "NYK"},
		},
	}
	if predicted {
		r.ID = "p-" + id
		r.RecommendedTeam = &models.Team{ID: "1", Code: "BOS"}
		r.ConfidenceScore = 85
	}
	return r
}

func fixture() []models.PickRecord {
	return []models.PickRecord{
		record("h1", "2024-03-08", time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC), true, models.OutcomeWin, models.OutcomeWin),
		record("h2", "2024-03-09", time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC), true, models.OutcomeLoss, models.OutcomePush),
		record("r1", "2024-03-10", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), true, models.OutcomeWin, models.OutcomeLoss),
		record("r2", "2024-03-10", time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC), true, models.OutcomeWin, ""),
		record("r3", "2024-03-10", time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC), false, "", ""),
	}
}

func newTestService(store database.PickStore) *DashboardService {
	config := DefaultDashboardConfig()
	clock := stats.FixedClock{At: time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)}
	return NewDashboardService(store, clock, config)
}

func TestDashboardService(t *testing.T) {
	Convey("Given a dashboard over a memory store", t, func() {
		store := database.NewMemoryPickStore(fixture())
		service := newTestService(store)
		ctx := context.Background()

		Convey("Building today's spread dashboard", func() {
			view, err := service.Build(ctx, "", models.DimensionSpread, 7)
			So(err, ShouldBeNil)

			Convey("resolves the window and navigator", func() {
				So(view.Date, ShouldEqual, "2024-03-10")
				So(view.PrevDate, ShouldEqual, "2024-03-09")
				So(view.NextDate, ShouldEqual, "2024-03-11")
				So(view.IsToday, ShouldBeTrue)
				So(view.DisplayDate, ShouldEqual, "Sunday, March 10, 2024")
			})

			Convey("lists the day's matches by start time", func() {
				So(view.Picks, ShouldHaveLength, 3)
				So(view.Picks[0].MatchID, ShouldEqual, "m-r3")
				So(view.Picks[2].MatchID, ShouldEqual, "m-r2")
				So(view.PredictedCount, ShouldEqual, 2)
				So(view.PendingCount(), ShouldEqual, 1)
			})

			Convey("compares the day with the season", func() {
				So(view.Comparison.Daily, ShouldResemble, stats.DailyStat{Wins: 2, Total: 2, Rate: 100})
				So(view.Comparison.Season, ShouldResemble, stats.DailyStat{Wins: 3, Total: 4, Rate: 75})
			})

			Convey("charts the settled days", func() {
				So(view.Trend, ShouldHaveLength, 3)
				So(view.Trend[0].Day, ShouldEqual, "2024-03-08")
				So(view.Trend[1].WinRate, ShouldEqual, 0)
				So(view.Trend[2].Date, ShouldEqual, "03/10")
			})
		})

		Convey("The combined dimension counts both fields", func() {
			view, err := service.Build(ctx, "2024-03-10", models.DimensionCombined, 7)
			So(err, ShouldBeNil)
			So(view.Comparison.Daily, ShouldResemble, stats.DailyStat{Wins: 2, Total: 3, Rate: 67})
		})

		Convey("A past date is not today and has no games", func() {
			view, err := service.Build(ctx, "2024-02-01", models.DimensionSpread, 30)
			So(err, ShouldBeNil)
			So(view.IsToday, ShouldBeFalse)
			So(view.Picks, ShouldBeEmpty)
			So(view.Comparison.Daily, ShouldResemble, stats.DailyStat{})
			So(view.TrendDays, ShouldEqual, 30)
		})

		Convey("An unknown trend window falls back to the default", func() {
			view, err := service.Build(ctx, "", models.DimensionSpread, 14)
			So(err, ShouldBeNil)
			So(view.TrendDays, ShouldEqual, 7)
		})

		Convey("A malformed date falls back to today", func() {
			view, err := service.Build(ctx, "03/10/2024", models.DimensionSpread, 7)
			So(err, ShouldBeNil)
			So(view.Date, ShouldEqual, "2024-03-10")
		})

		Convey("Only dates that do not resolve are logged as invalid", func() {
			var buf bytes.Buffer
			service.logger = logging.New(logging.Config{Level: "debug", Output: &buf, Prefix: "Dashboard"})

			window := service.ResolveWindow(" 2024-03-09 ")
			So(window.Date, ShouldEqual, "2024-03-09")
			So(buf.String(), ShouldNotContainSubstring, "Invalid date")

			window = service.ResolveWindow("2024-02-30")
			So(window.Date, ShouldEqual, "2024-03-10")
			So(buf.String(), ShouldContainSubstring, "Invalid date")
		})

		Convey("The recorder sees the load", func() {
			recorder := &fakeRecorder{loaded: map[string]int{}}
			service.SetRecorder(recorder)
			_, err := service.Build(ctx, "", models.DimensionTotal, 7)
			So(err, ShouldBeNil)
			So(recorder.loaded["daily"], ShouldEqual, 3)
			So(recorder.loaded["historical"], ShouldEqual, 4)
			So(recorder.renders, ShouldResemble, []string{"TOTAL"})
		})

		Convey("The trend API validates its window", func() {
			points, err := service.Trend(ctx, models.DimensionTotal, 99)
			So(err, ShouldBeNil)
			So(points, ShouldHaveLength, 2)
			So(points[0], ShouldResemble, stats.TrendPoint{Day: "2024-03-08", Date: "03/08", WinRate: 100, Wins: 1, Total: 1})
			So(points[1].WinRate, ShouldEqual, 0)
		})

		Convey("Daily picks come with their window", func() {
			daily, err := service.DailyPicks(ctx, "2024-03-09")
			So(err, ShouldBeNil)
			So(daily.Window.Date, ShouldEqual, "2024-03-09")
			So(daily.Picks, ShouldHaveLength, 1)
		})
	})

	Convey("Given a failing store", t, func() {
		service := newTestService(failingStore{database.NewMemoryPickStore(fixture())})

		Convey("Build fails with the wrapped error", func() {
			view, err := service.Build(context.Background(), "", models.DimensionSpread, 7)
			So(view, ShouldBeNil)
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
		})

		Convey("Trend fails too", func() {
			_, err := service.Trend(context.Background(), models.DimensionSpread, 7)
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
		})
	})
}

func TestMatchService(t *testing.T) {
	Convey("Given a match service", t, func() {
		service := NewMatchService(database.NewMemoryPickStore(fixture()), 80)
		ctx := context.Background()

		Convey("A predicted match is returned with its classifications", func() {
			view, err := service.Detail(ctx, "m-r1")
			So(err, ShouldBeNil)
			So(view, ShouldNotBeNil)
			So(view.HighConfidence, ShouldBeTrue)
			So(view.Spread, ShouldEqual, stats.Win)
			So(view.Total, ShouldEqual, stats.Loss)
		})

		Convey("A match without prediction, an unknown id or a blank id is nil", func() {
			for _, id := range []string{"m-r3", "missing", "  "} {
				view, err := service.Detail(ctx, id)
				So(err, ShouldBeNil)
				So(view, ShouldBeNil)
			}
		})

		Convey("Store errors are wrapped", func() {
			failing := NewMatchService(failingStore{database.NewMemoryPickStore(nil)}, 80)
			_, err := failing.Detail(ctx, "m-r1")
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
		})
	})
}
