package models

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDimension(t *testing.T) {
	Convey("ParseDimension", t, func() {
		So(ParseDimension("total"), ShouldEqual, DimensionTotal)
		So(ParseDimension(" COMBINED "), ShouldEqual, DimensionCombined)
		So(ParseDimension("spread"), ShouldEqual, DimensionSpread)

		Convey("Unknown values fall back to SPREAD", func() {
			So(ParseDimension(""), ShouldEqual, DimensionSpread)
			So(ParseDimension("moneyline"), ShouldEqual, DimensionSpread)
		})

		Convey("Labels and params", func() {
			So(DimensionTotal.Label(), ShouldEqual, "Total")
			So(DimensionCombined.Param(), ShouldEqual, "combined")
		})
	})
}

func TestPickRecord(t *testing.T) {
	Convey("Given a pick record", t, func() {
		record := PickRecord{MatchID: "m1", SpreadOutcome: OutcomeWin}

		Convey("Without a recommended team it has no prediction", func() {
			So(record.HasPrediction(), ShouldBeFalse)
			So(record.IsHighConfidence(0), ShouldBeFalse)
		})

		Convey("Confidence is compared against the threshold", func() {
			record.RecommendedTeam = &Team{Code: "BOS"}
			record.ConfidenceScore = 80
			So(record.IsHighConfidence(80), ShouldBeTrue)
			So(record.IsHighConfidence(81), ShouldBeFalse)
		})

		Convey("Outcomes are read per dimension", func() {
			So(record.IsSettled(), ShouldBeTrue)
			So(record.OutcomeFor(DimensionSpread), ShouldEqual, OutcomeWin)
			So(record.OutcomeFor(DimensionTotal), ShouldEqual, OutcomeNone)
			So(record.OutcomeFor(DimensionCombined), ShouldEqual, OutcomeNone)
			So(PickRecord{}.IsSettled(), ShouldBeFalse)
		})

		Convey("Outcome classes", func() {
			So(OutcomeClass(OutcomeWin), ShouldEqual, "outcome-win")
			So(OutcomeClass(OutcomeLoss), ShouldEqual, "outcome-loss")
			So(OutcomeClass(OutcomePush), ShouldEqual, "outcome-none")
		})
	})
}

func TestMatchFormatting(t *testing.T) {
	Convey("Given a match", t, func() {
		spread, total := -4.5, 221.5
		home, away := 110, 104
		match := &Match{
			HomeTeam: Team{Code: "BOS", FullName: "Boston Celtics"},
			AwayTeam: Team{Code: "NYK"},
		}

		Convey("Missing lines have placeholders", func() {
			So(match.FormatSpread(), ShouldEqual, "PK")
			So(match.FormatTotal(), ShouldEqual, "--")
			So(match.ScoreLine(), ShouldEqual, "")
		})

		Convey("Lines and scores are formatted", func() {
			match.VegasSpread = &spread
			match.VegasTotal = &total
			match.HomeScore = &home
			match.AwayScore = &away
			match.Status = MatchStatusFinal
			So(match.FormatSpread(), ShouldEqual, "-4.5")
			So(match.FormatTotal(), ShouldEqual, "221.5")
			So(match.ScoreLine(), ShouldEqual, "104 - 110")
			So(match.Matchup(), ShouldEqual, "NYK @ BOS")

			positive := 3.0
			match.VegasSpread = &positive
			So(match.FormatSpread(), ShouldEqual, "+3")
		})

		Convey("Scores of unfinished games are hidden", func() {
			match.HomeScore = &home
			match.AwayScore = &away
			match.Status = MatchStatusScheduled
			So(match.ScoreLine(), ShouldEqual, "")
		})

		Convey("Teams fall back to the code and placeholder", func() {
			So(match.HomeTeam.DisplayName(), ShouldEqual, "Boston Celtics")
			So(match.AwayTeam.DisplayName(), ShouldEqual, "NYK")
			So(match.AwayTeam.Logo(), ShouldEqual, "/static/placeholder.svg")
			So(match.AwayTeam.String(), ShouldEqual, "NYK")
		})
	})
}
