package models

import (
	"strings"
)

// Outcome is the settlement result stored on a pick dimension.
// An empty Outcome means the dimension has not been settled yet.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
	OutcomePush Outcome = "PUSH"
	OutcomeNone Outcome = ""
)

// IsSet returns true if the settlement process wrote anything to the field
func (o Outcome) IsSet() bool {
	return o != OutcomeNone
}

// Dimension selects which betting line a statistic is computed over
type Dimension string

const (
	DimensionSpread   Dimension = "SPREAD"
	DimensionTotal    Dimension = "TOTAL"
	DimensionCombined Dimension = "COMBINED"
)

// Dimensions lists the selectable dimensions in tab order
var Dimensions = []Dimension{DimensionSpread, DimensionTotal, DimensionCombined}

// ParseDimension maps a query value to a Dimension. Unknown values fall back to SPREAD.
func ParseDimension(value string) Dimension {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "total", "ou", "over_under":
		return DimensionTotal
	case "combined", "all":
		return DimensionCombined
	default:
		return DimensionSpread
	}
}

// Label returns the tab label shown on the dashboard
func (d Dimension) Label() string {
	switch d {
	case DimensionTotal:
		return "Total"
	case DimensionCombined:
		return "Combined"
	default:
		return "Spread"
	}
}

// Param returns the lowercase query parameter form
func (d Dimension) Param() string {
	return strings.ToLower(string(d))
}

// PickRecord is one aggregated prediction row joined with its match.
// Records are read-only: outcomes are written once by the external settlement job.
type PickRecord struct {
	ID        string `bson:"id" json:"id"`
	MatchID   string `bson:"match_id" json:"match_id"`
	MatchDate string `bson:"match_date" json:"match_date"` // game day, "2006-01-02"

	SpreadOutcome Outcome `bson:"spread_outcome" json:"spread_outcome"`
	TotalOutcome  Outcome `bson:"total_outcome" json:"total_outcome"`

	// Display fields, not consumed by the stats engine
	ConfidenceScore int      `bson:"confidence_score" json:"confidence_score"`
	ConsensusLogic  string   `bson:"consensus_logic" json:"consensus_logic"`
	SpreadLogic     string   `bson:"spread_logic" json:"spread_logic"`
	LineInfo        string   `bson:"line_info" json:"line_info"`
	OUPick          string   `bson:"ou_pick" json:"ou_pick"` // "OVER" or "UNDER"
	OUConfidence    int      `bson:"ou_confidence" json:"ou_confidence"`
	OULine          *float64 `bson:"ou_line,omitempty" json:"ou_line,omitempty"`

	RecommendedTeam *Team  `bson:"recommended_team,omitempty" json:"recommended_team,omitempty"`
	Match           *Match `bson:"match,omitempty" json:"match,omitempty"`
}

// HasPrediction returns true if the prediction system produced a pick for the match
func (p PickRecord) HasPrediction() bool {
	return p.RecommendedTeam != nil
}

// IsHighConfidence returns true when the pick clears the "High Value" threshold
func (p PickRecord) IsHighConfidence(threshold int) bool {
	return p.HasPrediction() && p.ConfidenceScore >= threshold
}

// IsSettled returns true if either dimension has been graded
func (p PickRecord) IsSettled() bool {
	return p.SpreadOutcome.IsSet() || p.TotalOutcome.IsSet()
}

// OutcomeFor returns the stored outcome for a single-field dimension
func (p PickRecord) OutcomeFor(dim Dimension) Outcome {
	switch dim {
	case DimensionSpread:
		return p.SpreadOutcome
	case DimensionTotal:
		return p.TotalOutcome
	default:
		return OutcomeNone
	}
}

// OutcomeClass returns the CSS class for a settled dimension
func OutcomeClass(o Outcome) string {
	switch o {
	case OutcomeWin:
		return "outcome-win"
	case OutcomeLoss:
		return "outcome-loss"
	default:
		return "outcome-none"
	}
}
