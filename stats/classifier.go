package stats

import (
	"picks-dashboard/models"
)

// Classification is the counting state of one pick dimension
type Classification int

const (
	Unsettled Classification = iota
	Win
	Loss
)

// String returns the classification name
func (c Classification) String() string {
	switch c {
	case Win:
		return "WIN"
	case Loss:
		return "LOSS"
	default:
		return "UNSETTLED"
	}
}

// Counts returns true if the classification contributes to a total
func (c Classification) Counts() bool {
	return c == Win || c == Loss
}

// ClassifyOutcome maps a stored outcome value. Pushes, nulls and unknown values are unsettled.
func ClassifyOutcome(o models.Outcome) Classification {
	switch o {
	case models.OutcomeWin:
		return Win
	case models.OutcomeLoss:
		return Loss
	default:
		return Unsettled
	}
}

// Fields returns the single-field dimensions that contribute to dim
func Fields(dim models.Dimension) []models.Dimension {
	switch dim {
	case models.DimensionSpread:
		return []models.Dimension{models.DimensionSpread}
	case models.DimensionTotal:
		return []models.Dimension{models.DimensionTotal}
	case models.DimensionCombined:
		return []models.Dimension{models.DimensionSpread, models.DimensionTotal}
	default:
		return nil
	}
}

// Classify returns the classification of the record's field for a single-field dimension.
// COMBINED is not a single field and classifies as Unsettled; use ClassifyAll for it.
func Classify(record models.PickRecord, dim models.Dimension) Classification {
	return ClassifyOutcome(record.OutcomeFor(dim))
}

// ClassifyAll classifies every field implied by dim, spread first
func ClassifyAll(record models.PickRecord, dim models.Dimension) []Classification {
	fields := Fields(dim)
	result := make([]Classification, 0, len(fields))
	for _, field := range fields {
		result = append(result, Classify(record, field))
	}
	return result
}
