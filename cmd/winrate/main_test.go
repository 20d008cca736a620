package main

import (
	"bytes"
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	. "github.com/smartystreets/goconvey/convey"

	"picks-dashboard/database"
	"picks-dashboard/models"
	"picks-dashboard/services"
	"picks-dashboard/stats"
)

func TestWriteReport(t *testing.T) {
	Convey("Given a dashboard view over sample picks", t, func() {
		loc, _ := time.LoadLocation("America/New_York")
		clock := stats.FixedClock{At: time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)}
		store := database.NewMemoryPickStore(database.SampleRecords(stats.Today(loc, clock), 10))

		svc := services.NewDashboardService(store, clock, services.DefaultDashboardConfig())
		view, err := svc.Build(context.Background(), "", models.DimensionSpread, 30)
		So(err, ShouldBeNil)

		var out bytes.Buffer
		So(writeReport(&out, view), ShouldBeNil)
		report := out.String()

		Convey("It prints the day and both win rates", func() {
			So(report, ShouldContainSubstring, "Sunday, March 10, 2024 (2024-03-10)")
			So(report, ShouldContainSubstring, "Daily Spread")
			So(report, ShouldContainSubstring, "Season Spread")
			So(report, ShouldContainSubstring, view.Comparison.Season.Record())
		})

		Convey("It prints the trend window", func() {
			So(report, ShouldContainSubstring, "TREND (30 days)")
		})

		Convey("It counts predicted and pending picks", func() {
			So(view.PredictedCount+view.PendingCount(), ShouldEqual, len(view.Picks))
			So(report, ShouldContainSubstring, "pending analysis")
		})
	})
}
