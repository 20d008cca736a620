package services

import (
	"context"
	"fmt"
	"strings"

	"picks-dashboard/database"
	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// MatchView is the detail page of one predicted match
type MatchView struct {
	Pick           *models.PickRecord   `json:"pick"`
	HighConfidence bool                 `json:"highConfidence"`
	Spread         stats.Classification `json:"-"`
	Total          stats.Classification `json:"-"`
}

// MatchService loads single match predictions
type MatchService struct {
	store     database.PickStore
	threshold int
}

// NewMatchService creates a match service flagging picks at or above threshold as high confidence
func NewMatchService(store database.PickStore, threshold int) *MatchService {
	return &MatchService{store: store, threshold: threshold}
}

// Detail returns the view of a match, or nil when it has no prediction
func (s *MatchService) Detail(ctx context.Context, matchID string) (*MatchView, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, nil
	}

	ctx, cancel := database.WithShortTimeout(ctx)
	defer cancel()

	record, err := s.store.FindPickByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	if record == nil || record.Match == nil {
		return nil, nil
	}

	return &MatchView{
		Pick:           record,
		HighConfidence: record.IsHighConfidence(s.threshold),
		Spread:         stats.Classify(*record, models.DimensionSpread),
		Total:          stats.Classify(*record, models.DimensionTotal),
	}, nil
}
