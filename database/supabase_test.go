package database

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"picks-dashboard/stats"
)

func signedKey(role string, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"iss":  "supabase",
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}

const dailyResponse = `[
  {"id": 2, "date": "2024-03-10", "start_time": "2024-03-10T23:00:00+00:00", "status": "STATUS_SCHEDULED",
   "home_score": null, "away_score": null, "vegas_spread": -3.5, "vegas_total": 221.5,
   "home_team": {"id": 1, "code": "BOS", "full_name": "Boston Celtics", "logo_url": null},
   "away_team": {"id": 2, "code": "NYK", "full_name": "New York Knicks", "logo_url": "https://logo/nyk.png"},
   "aggregated_picks": []},
  {"id": 1, "date": "2024-03-10", "start_time": "2024-03-10T18:00:00+00:00", "status": "STATUS_FINAL",
   "home_score": 101, "away_score": 99, "vegas_spread": null, "vegas_total": null,
   "home_team": {"id": 3, "code": "LAL", "full_name": "Los Angeles Lakers", "logo_url": ""},
   "away_team": {"id": 4, "code": "GSW", "full_name": "Golden State Warriors", "logo_url": ""},
   "aggregated_picks": [{"id": "p1", "match_id": 1, "confidence_score": 84, "consensus_logic": "Home(70) vs Away(30)",
     "spread_logic": null, "line_info": "Line: -2", "ou_pick": "UNDER", "ou_confidence": 61, "ou_line": 230.5,
     "spread_outcome": "WIN", "total_outcome": null, "recommended_team_id": 3,
     "recommended_team": {"id": 3, "code": "LAL", "full_name": "Los Angeles Lakers", "logo_url": ""}}]}
]`

func TestInspectSupabaseKey(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	Convey("Given API keys", t, func() {
		Convey("An anon JWT exposes its role and expiry", func() {
			info, err := InspectSupabaseKey(signedKey("anon", now.Add(time.Hour)), now)
			So(err, ShouldBeNil)
			So(info.IsJWT, ShouldBeTrue)
			So(info.Role, ShouldEqual, "anon")
			So(info.ExpiresAt.Equal(now.Add(time.Hour)), ShouldBeTrue)
		})

		Convey("An expired JWT is rejected", func() {
			_, err := InspectSupabaseKey(signedKey("anon", now.Add(-time.Minute)), now)
			So(errors.Is(err, ErrSupabaseKeyExpired), ShouldBeTrue)
		})

		Convey("Opaque keys are accepted without claims", func() {
			info, err := InspectSupabaseKey("sb_publishable_abc123", now)
			So(err, ShouldBeNil)
			So(info.IsJWT, ShouldBeFalse)
		})
	})
}

func TestSupabasePickStore(t *testing.T) {
	Convey("Given a PostgREST server", t, func() {
		key := signedKey("anon", time.Now().Add(time.Hour))
		var requests []*http.Request
		historicalRows := 0

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests = append(requests, r)
			if r.Header.Get("apikey") != key || r.Header.Get("Authorization") != "Bearer "+key {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"message":"invalid key"}`)
				return
			}

			switch r.URL.Path {
			case "/rest/v1/matches":
				if r.URL.Query().Get("select") == "id" {
					fmt.Fprint(w, `[{"id": 1}]`)
					return
				}
				fmt.Fprint(w, dailyResponse)
			case "/rest/v1/aggregated_picks":
				if r.URL.Query().Get("match_id") != "" {
					if r.URL.Query().Get("match_id") != "eq.1" {
						fmt.Fprint(w, `[]`)
						return
					}
					fmt.Fprint(w, `[{"id": "p1", "match_id": 1, "confidence_score": 84, "spread_outcome": "WIN",
					  "recommended_team": {"id": 3, "code": "LAL"},
					  "match": {"id": 1, "date": "2024-03-10", "start_time": "2024-03-10T18:00:00Z", "status": "STATUS_FINAL",
					    "home_team": {"id": 3, "code": "LAL"}, "away_team": {"id": 4, "code": "GSW"}}}]`)
					return
				}
				offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
				rows := make([]string, 0)
				for i := offset; i < historicalRows && i < offset+SupabasePageSize; i++ {
					day := 1 + (historicalRows-i)%28
					rows = append(rows, fmt.Sprintf(`{"id": %d, "match_id": %d, "spread_outcome": "WIN", "total_outcome": null,
					  "match": {"date": "2024-02-%02dT00:00:00"}}`, i, i, day))
				}
				fmt.Fprint(w, "["+strings.Join(rows, ",")+"]")
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		store, err := NewSupabasePickStore(SupabaseConfig{URL: server.URL + "/", Key: key}, server.Client())
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("Daily picks include matches without a pick, ordered by start time", func() {
			window := stats.DayWindow{
				Date:  "2024-03-10",
				Start: time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC),
			}
			records, err := store.FindDailyPicks(ctx, window)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)

			So(records[0].ID, ShouldEqual, "p1")
			So(records[0].MatchID, ShouldEqual, "1")
			So(records[0].RecommendedTeam.Code, ShouldEqual, "LAL")
			So(*records[0].Match.HomeScore, ShouldEqual, 101)
			So(records[0].SpreadOutcome.IsSet(), ShouldBeTrue)
			So(records[0].TotalOutcome.IsSet(), ShouldBeFalse)

			So(records[1].HasPrediction(), ShouldBeFalse)
			So(records[1].Match.AwayTeam.LogoURL, ShouldEqual, "https://logo/nyk.png")

			query := requests[0].URL.Query()
			So(query["start_time"], ShouldResemble, []string{"gte.2024-03-10T05:00:00Z", "lt.2024-03-11T18:00:00Z"})
		})

		Convey("Historical picks are paged and sorted by match date", func() {
			historicalRows = SupabasePageSize + 5
			records, err := store.FindHistoricalPicks(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, SupabasePageSize+5)
			So(requests, ShouldHaveLength, 2)
			So(requests[1].URL.Query().Get("offset"), ShouldEqual, strconv.Itoa(SupabasePageSize))
			for i := 1; i < len(records); i++ {
				So(records[i-1].MatchDate <= records[i].MatchDate, ShouldBeTrue)
			}
			So(len(records[0].MatchDate), ShouldEqual, 10)
		})

		Convey("An empty history returns an empty slice", func() {
			records, err := store.FindHistoricalPicks(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldNotBeNil)
			So(records, ShouldBeEmpty)
		})

		Convey("A match lookup joins the match and teams", func() {
			record, err := store.FindPickByMatch(ctx, "1")
			So(err, ShouldBeNil)
			So(record, ShouldNotBeNil)
			So(record.MatchDate, ShouldEqual, "2024-03-10")
			So(record.Match.Matchup(), ShouldContainSubstring, "LAL")
		})

		Convey("An unknown match returns nil", func() {
			record, err := store.FindPickByMatch(ctx, "999")
			So(err, ShouldBeNil)
			So(record, ShouldBeNil)
		})

		Convey("Ping succeeds", func() {
			So(store.Ping(ctx), ShouldBeNil)
		})

		Convey("A rejected key surfaces the status", func() {
			other, err := NewSupabasePickStore(SupabaseConfig{URL: server.URL, Key: "opaque"}, server.Client())
			So(err, ShouldBeNil)
			err = other.Ping(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "401")
		})
	})

	Convey("Missing settings are rejected", t, func() {
		_, err := NewSupabasePickStore(SupabaseConfig{URL: "https://x.supabase.co"}, nil)
		So(err, ShouldNotBeNil)
	})

	Convey("An expired key is rejected at construction", t, func() {
		_, err := NewSupabasePickStore(SupabaseConfig{URL: "https://x.supabase.co", Key: signedKey("anon", time.Now().Add(-time.Hour))}, nil)
		So(errors.Is(err, ErrSupabaseKeyExpired), ShouldBeTrue)
	})
}

func TestOpen(t *testing.T) {
	Convey("Given backend options", t, func() {
		ctx := context.Background()

		Convey("The memory backend needs no connection", func() {
			store, err := Open(ctx, OpenOptions{Backend: BackendMemory})
			So(err, ShouldBeNil)
			So(store.Ping(ctx), ShouldBeNil)
		})

		Convey("An unknown backend is rejected", func() {
			store, err := Open(ctx, OpenOptions{Backend: "sqlite"})
			So(err, ShouldNotBeNil)
			So(store, ShouldBeNil)
		})

		Convey("Supabase is pinged before it is returned", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			store, err := Open(ctx, OpenOptions{
				Backend:  BackendSupabase,
				Supabase: SupabaseConfig{URL: server.URL, Key: signedKey("anon", time.Now().Add(time.Hour))},
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "503")
			So(store, ShouldBeNil)
		})
	})
}
