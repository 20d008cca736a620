package database

import (
	"context"
	"sort"
	"time"

	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// Collection and table names shared by every backend
const (
	MatchesCollection = "matches"
	TeamsCollection   = "teams"
	PicksCollection   = "aggregated_picks"
)

// PickStore is the read-only query surface over the external pick store
type PickStore interface {
	// FindDailyPicks returns the matches starting inside the window, each with its pick
	// when one exists, ordered by start time
	FindDailyPicks(ctx context.Context, window stats.DayWindow) ([]models.PickRecord, error)

	// FindHistoricalPicks returns every pick with at least one settled dimension,
	// ordered by match date ascending
	FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error)

	// FindPickByMatch returns the pick of a match, or nil when there is none
	FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error)

	Ping(ctx context.Context) error
	Close() error
}

// FetchObserver receives the duration and result of every store call
type FetchObserver interface {
	ObserveFetch(operation string, duration time.Duration, err error)
}

// Store operation names reported to a FetchObserver
const (
	OpDailyPicks      = "daily_picks"
	OpHistoricalPicks = "historical_picks"
	OpPickByMatch     = "pick_by_match"
)

type instrumentedStore struct {
	PickStore
	observer FetchObserver
}

// Instrument wraps store so every query is reported to observer
func Instrument(store PickStore, observer FetchObserver) PickStore {
	if observer == nil {
		return store
	}
	return &instrumentedStore{PickStore: store, observer: observer}
}

func (s *instrumentedStore) FindDailyPicks(ctx context.Context, window stats.DayWindow) ([]models.PickRecord, error) {
	start := time.Now()
	records, err := s.PickStore.FindDailyPicks(ctx, window)
	s.observer.ObserveFetch(OpDailyPicks, time.Since(start), err)
	return records, err
}

func (s *instrumentedStore) FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error) {
	start := time.Now()
	records, err := s.PickStore.FindHistoricalPicks(ctx)
	s.observer.ObserveFetch(OpHistoricalPicks, time.Since(start), err)
	return records, err
}

func (s *instrumentedStore) FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error) {
	start := time.Now()
	record, err := s.PickStore.FindPickByMatch(ctx, matchID)
	s.observer.ObserveFetch(OpPickByMatch, time.Since(start), err)
	return record, err
}

// sortByMatchDate orders records by match date, keeping store order for ties
func sortByMatchDate(records []models.PickRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MatchDate < records[j].MatchDate
	})
}

// sortByStartTime orders records by kickoff, then match id for games at the same time
func sortByStartTime(records []models.PickRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Match, records[j].Match
		if a == nil || b == nil {
			return a != nil
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
}
