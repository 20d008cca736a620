package stats

import (
	"strconv"
	"strings"
	"time"

	"picks-dashboard/models"
)

// TrendWindows are the selectable trailing windows, in days
var TrendWindows = []int{7, 30, 90}

// DefaultTrendDays is the window used when none is selected
const DefaultTrendDays = 7

const trendLabelLayout = "01/02"

// TrendPoint is one charted day. Points with no settled picks are never emitted.
type TrendPoint struct {
	Day     string `json:"day"`  // "2006-01-02"
	Date    string `json:"date"` // short label, "01/02"
	WinRate int    `json:"winRate"`
	Wins    int    `json:"wins"`
	Total   int    `json:"total"`
}

// ParseTrendWindow returns the window in days if value is one of TrendWindows, fallback otherwise
func ParseTrendWindow(value string, fallback int) int {
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	for _, w := range TrendWindows {
		if w == days {
			return days
		}
	}
	return fallback
}

// BuildTrend buckets records by game day over the trailing window ending today
// and returns one point per day that has settled picks, oldest first.
func BuildTrend(records []models.PickRecord, dim models.Dimension, days int, loc *time.Location, clock Clock) []TrendPoint {
	if days <= 0 {
		return []TrendPoint{}
	}
	points := make([]TrendPoint, 0, days)

	loc, clock = defaults(loc, clock)
	buckets := bucketByDay(records)
	today := civilToday(loc, clock)

	for offset := days - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		key := day.Format(DateLayout)

		stat := Aggregate(buckets[key], dim)
		if stat.Total == 0 {
			continue
		}

		points = append(points, TrendPoint{
			Day:     key,
			Date:    day.Format(trendLabelLayout),
			WinRate: stat.Rate,
			Wins:    stat.Wins,
			Total:   stat.Total,
		})
	}

	return points
}

// bucketByDay groups records by the date prefix of MatchDate.
// Dates shorter than a full day can never prefix-match and are skipped.
func bucketByDay(records []models.PickRecord) map[string][]models.PickRecord {
	buckets := make(map[string][]models.PickRecord)
	for _, record := range records {
		if len(record.MatchDate) < len(DateLayout) {
			continue
		}
		key := record.MatchDate[:len(DateLayout)]
		buckets[key] = append(buckets[key], record)
	}
	return buckets
}
