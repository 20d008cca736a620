package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// MemoryPickStore serves picks from process memory. It backs the tests and
// the demo fallback used when the configured store cannot be reached.
type MemoryPickStore struct {
	mu      sync.RWMutex
	records []models.PickRecord
	pingErr error
}

// NewMemoryPickStore creates a store holding copies of records
func NewMemoryPickStore(records []models.PickRecord) *MemoryPickStore {
	s := &MemoryPickStore{}
	s.Replace(records)
	return s
}

// Replace swaps the stored records
func (s *MemoryPickStore) Replace(records []models.PickRecord) {
	copied := make([]models.PickRecord, len(records))
	copy(copied, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copied
}

// SetPingError makes Ping fail with err (nil restores health)
func (s *MemoryPickStore) SetPingError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// FindDailyPicks returns records whose match starts inside the window
func (s *MemoryPickStore) FindDailyPicks(ctx context.Context, window stats.DayWindow) ([]models.PickRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.PickRecord, 0)
	for _, record := range s.records {
		if record.Match != nil && window.Contains(record.Match.StartTime) {
			records = append(records, record)
		}
	}
	sortByStartTime(records)
	return records, nil
}

// FindHistoricalPicks returns records with a settled dimension ordered by match date
func (s *MemoryPickStore) FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.PickRecord, 0)
	for _, record := range s.records {
		if record.IsSettled() {
			records = append(records, record)
		}
	}
	sortByMatchDate(records)
	return records, nil
}

// FindPickByMatch returns the predicted record of a match or nil
func (s *MemoryPickStore) FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.MatchID == matchID && record.HasPrediction() {
			found := record
			return &found, nil
		}
	}
	return nil, nil
}

// Ping reports the configured ping error
func (s *MemoryPickStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pingErr
}

// Close is a no-op
func (s *MemoryPickStore) Close() error {
	return nil
}

var sampleTeams = []models.Team{
	{ID: "1", Code: "BOS", FullName: "Boston Celtics"},
	{ID: "2", Code: "NYK", FullName: "New York Knicks"},
	{ID: "3", Code: "LAL", FullName: "Los Angeles Lakers"},
	{ID: "4", Code: "GSW", FullName: "Golden State Warriors"},
	{ID: "5", Code: "MIA", FullName: "Miami Heat"},
	{ID: "6", Code: "DEN", FullName: "Denver Nuggets"},
}

// SampleRecords generates a deterministic run of demo picks covering the days
// before today (local midnight), today and tomorrow. Games from today on are
// unsettled, and one game a day has no prediction.
func SampleRecords(today time.Time, days int) []models.PickRecord {
	records := make([]models.PickRecord, 0, days*3)
	outcomes := []models.Outcome{models.OutcomeWin, models.OutcomeLoss, models.OutcomeWin, models.OutcomePush, models.OutcomeWin}
	loc := today.Location()

	for d := days - 1; d >= -1; d-- {
		day := stats.LocalMidnight(today.Year(), today.Month(), today.Day()-d, loc)
		settled := d > 0

		for g := 0; g < 3; g++ {
			n := (d+days)*3 + g
			home := sampleTeams[(n)%len(sampleTeams)]
			away := sampleTeams[(n+1+g)%len(sampleTeams)]
			if away.ID == home.ID {
				away = sampleTeams[(n+2)%len(sampleTeams)]
			}
			spreadLine := float64((n%13)-6) + 0.5
			totalLine := 210.5 + float64(n%20)

			match := &models.Match{
				ID:          fmt.Sprintf("%s-%d", day.Format("20060102"), g+1),
				Date:        day.Format(stats.DateLayout),
				StartTime:   day.Add(time.Duration(19+g) * time.Hour).UTC(),
				Status:      models.MatchStatusScheduled,
				HomeTeam:    home,
				AwayTeam:    away,
				VegasSpread: &spreadLine,
				VegasTotal:  &totalLine,
			}

			record := models.PickRecord{
				MatchID:   match.ID,
				MatchDate: match.Date,
				Match:     match,
			}

			if g < 2 {
				recommended := home
				if n%2 == 0 {
					recommended = away
				}
				record.ID = "pick-" + match.ID
				record.RecommendedTeam = &recommended
				record.ConfidenceScore = 55 + (n*7)%40
				record.ConsensusLogic = fmt.Sprintf("Home(%d) vs Away(%d)", 40+n%30, 35+(n*3)%30)
				record.SpreadLogic = "Value Bet Analysis"
				record.LineInfo = fmt.Sprintf("Line: %g", spreadLine)
				record.OUPick = "OVER"
				if n%3 == 0 {
					record.OUPick = "UNDER"
				}
				record.OUConfidence = 50 + (n*5)%35
				record.OULine = &totalLine
			}

			if settled {
				homeScore, awayScore := 100+n%25, 98+(n*3)%27
				match.Status = models.MatchStatusFinal
				match.HomeScore = &homeScore
				match.AwayScore = &awayScore
				if record.HasPrediction() {
					record.SpreadOutcome = outcomes[n%len(outcomes)]
					record.TotalOutcome = outcomes[(n+2)%len(outcomes)]
				}
			}

			records = append(records, record)
		}
	}
	return records
}
