package stats

import (
	"fmt"

	"picks-dashboard/models"
)

// DailyStat is a win/loss count over a set of picks. Wins never exceeds Total.
type DailyStat struct {
	Wins  int `json:"wins"`
	Total int `json:"total"`
	Rate  int `json:"rate"` // percent, 0..100
}

// Losses returns Total - Wins
func (s DailyStat) Losses() int {
	return s.Total - s.Wins
}

// Record returns the stat in "W-L" form
func (s DailyStat) Record() string {
	return fmt.Sprintf("%dW - %dL", s.Wins, s.Losses())
}

// WinRate returns round(100*wins/total) with halves rounded away from zero, 0 for an empty total
func WinRate(wins, total int) int {
	if total <= 0 || wins < 0 {
		return 0
	}
	if wins > total {
		wins = total
	}
	return (200*wins + total) / (2 * total)
}

// Aggregate counts wins and settled picks over records for the dimension
func Aggregate(records []models.PickRecord, dim models.Dimension) DailyStat {
	var stat DailyStat
	fields := Fields(dim)

	for _, record := range records {
		for _, field := range fields {
			switch Classify(record, field) {
			case Win:
				stat.Wins++
				stat.Total++
			case Loss:
				stat.Total++
			}
		}
	}

	stat.Rate = WinRate(stat.Wins, stat.Total)
	return stat
}

// Comparison holds the daily and season figures shown side by side
type Comparison struct {
	Dimension models.Dimension `json:"dimension"`
	Daily     DailyStat        `json:"daily"`
	Season    DailyStat        `json:"season"`
}

// Compare aggregates today's records and the historical set with the same dimension
func Compare(today, season []models.PickRecord, dim models.Dimension) Comparison {
	return Comparison{
		Dimension: dim,
		Daily:     Aggregate(today, dim),
		Season:    Aggregate(season, dim),
	}
}
