package models

import (
	"fmt"
	"time"
)

// MatchStatus is the status string written by the schedule scraper
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "STATUS_SCHEDULED"
	MatchStatusFinal     MatchStatus = "STATUS_FINAL"
	MatchStatusFinished  MatchStatus = "STATUS_FINISHED"
	MatchStatusFinalText MatchStatus = "Final"
)

// Match represents a scheduled or completed game with its Vegas lines
type Match struct {
	ID        string      `bson:"id" json:"id"`
	Date      string      `bson:"date" json:"date"`             // game day, "2006-01-02"
	StartTime time.Time   `bson:"start_time" json:"start_time"` // tip-off instant, UTC
	Status    MatchStatus `bson:"status" json:"status"`
	HomeTeam  Team        `bson:"home_team" json:"home_team"`
	AwayTeam  Team        `bson:"away_team" json:"away_team"`
	HomeScore *int        `bson:"home_score,omitempty" json:"home_score,omitempty"`
	AwayScore *int        `bson:"away_score,omitempty" json:"away_score,omitempty"`

	VegasSpread *float64 `bson:"vegas_spread,omitempty" json:"vegas_spread,omitempty"` // home team line
	VegasTotal  *float64 `bson:"vegas_total,omitempty" json:"vegas_total,omitempty"`
}

// IsFinished returns true if the game has a final score
func (m *Match) IsFinished() bool {
	switch m.Status {
	case MatchStatusFinal, MatchStatusFinished, MatchStatusFinalText:
		return true
	}
	return false
}

// FormatSpread returns the home line with an explicit sign, "PK" when missing or zero
func (m *Match) FormatSpread() string {
	if m.VegasSpread == nil || *m.VegasSpread == 0 {
		return "PK"
	}
	if *m.VegasSpread > 0 {
		return fmt.Sprintf("+%g", *m.VegasSpread)
	}
	return fmt.Sprintf("%g", *m.VegasSpread)
}

// FormatTotal returns the posted total or "--"
func (m *Match) FormatTotal() string {
	if m.VegasTotal == nil {
		return "--"
	}
	return fmt.Sprintf("%g", *m.VegasTotal)
}

// ScoreLine returns "away - home" for finished games, empty otherwise
func (m *Match) ScoreLine() string {
	if !m.IsFinished() || m.HomeScore == nil || m.AwayScore == nil {
		return ""
	}
	return fmt.Sprintf("%d - %d", *m.AwayScore, *m.HomeScore)
}

// Matchup returns "AWAY @ HOME"
func (m *Match) Matchup() string {
	return m.AwayTeam.Code + " @ " + m.HomeTeam.Code
}
