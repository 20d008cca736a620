package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		manager := NewManager(WithNamespace("test"), WithHistogramBuckets([]float64{0.01, 0.1, 1}))

		Convey("When store fetches are observed", func() {
			manager.ObserveFetch("daily_picks", 20*time.Millisecond, nil)
			manager.ObserveFetch("daily_picks", 30*time.Millisecond, errors.New("timeout"))
			manager.ObserveFetch("historical_picks", time.Millisecond, nil)

			Convey("Then failures are counted per operation", func() {
				So(testutil.ToFloat64(manager.storeFetchErrors.WithLabelValues("daily_picks")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.storeFetchErrors.WithLabelValues("historical_picks")), ShouldEqual, 0)
				So(testutil.CollectAndCount(manager.storeFetchDuration), ShouldEqual, 2)
			})
		})

		Convey("When requests are observed", func() {
			manager.ObserveRequest("/", "GET", 200, 5*time.Millisecond)
			manager.ObserveRequest("/", "GET", 200, 5*time.Millisecond)
			manager.ObserveRequest("/match/{id}", "GET", 404, time.Millisecond)

			Convey("Then they are counted by route and status", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("/", "GET", "200")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("/match/{id}", "GET", "404")), ShouldEqual, 1)
			})
		})

		Convey("When gauges and counters are set", func() {
			manager.SetPicksLoaded("daily", 12)
			manager.SetPicksLoaded("daily", 9)
			manager.IncDashboardRender("SPREAD")
			manager.IncRenderError()

			Convey("Then the latest values are kept", func() {
				So(testutil.ToFloat64(manager.picksLoaded.WithLabelValues("daily")), ShouldEqual, 9)
				So(testutil.ToFloat64(manager.pageRenders.WithLabelValues("SPREAD")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.renderErrors), ShouldEqual, 1)
			})
		})

		Convey("The handler exposes the namespaced metrics", func() {
			manager.ObserveFetch("pick_by_match", time.Millisecond, nil)
			rec := httptest.NewRecorder()
			manager.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

			body, _ := io.ReadAll(rec.Body)
			So(rec.Code, ShouldEqual, 200)
			So(string(body), ShouldContainSubstring, "test_store_fetch_duration_seconds")
			So(string(body), ShouldNotContainSubstring, "go_goroutines")
		})
	})

	Convey("Runtime collectors are opt-in", t, func() {
		manager := NewManager(WithRuntimeCollectors())
		families, err := manager.Registry().Gather()
		So(err, ShouldBeNil)

		names := map[string]bool{}
		for _, family := range families {
			names[family.GetName()] = true
		}
		So(names["go_goroutines"], ShouldBeTrue)
	})
}
