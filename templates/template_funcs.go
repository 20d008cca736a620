package templates

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// Trend chart geometry in SVG user units
const (
	chartWidth   = 600
	chartHeight  = 220
	chartPadding = 30
)

// GetTemplateFuncs returns the template function map for HTML templates.
// Times are rendered in loc.
func GetTemplateFuncs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		// Basic math functions
		"add":   func(a, b int) int { return a + b },
		"minus": func(a, b int) int { return a - b },

		// String functions
		"lower": strings.ToLower,
		"upper": strings.ToUpper,

		// JSON and data functions
		"toJSON": func(v interface{}) template.JS {
			data, _ := json.Marshal(v)
			return template.JS(data)
		},
		"dict": dict,

		// Date and time functions
		"localTime": func(t time.Time) string { return t.In(loc).Format("3:04 PM") },
		"localDay":  func(t time.Time) string { return t.In(loc).Format("Mon Jan 2") },

		// Pick functions
		"outcomeClass":        models.OutcomeClass,
		"classificationClass": classificationClass,
		"confidenceWidth":     confidenceWidth,
		"isHighConfidence":    func(p models.PickRecord, threshold int) bool { return p.IsHighConfidence(threshold) },
		"outcomeLabel":        outcomeLabel,

		// Stats functions
		"rateClass":    rateClass,
		"trendChart":   BuildTrendChart,
		"dashboardURL": DashboardURL,
	}
}

func dict(values ...interface{}) (map[string]interface{}, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict: number of arguments must be even")
	}
	result := make(map[string]interface{})
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key must be string, got %T", values[i])
		}
		result[key] = values[i+1]
	}
	return result, nil
}

func classificationClass(c stats.Classification) string {
	switch c {
	case stats.Win:
		return "outcome-win"
	case stats.Loss:
		return "outcome-loss"
	default:
		return "outcome-none"
	}
}

// outcomeLabel returns the footer text of a settled dimension
func outcomeLabel(o models.Outcome) string {
	if !o.IsSet() {
		return "Pending"
	}
	return string(o)
}

// confidenceWidth clamps a confidence score to a bar width percentage
func confidenceWidth(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// rateClass colors a win rate: green at or above 50%, amber below
func rateClass(rate int) string {
	if rate >= 50 {
		return "rate-good"
	}
	return "rate-warn"
}

// DashboardURL builds a dashboard link keeping the date, dimension and trend window
func DashboardURL(date string, dim models.Dimension, days int) string {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	query.Set("dim", dim.Param())
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	return "/?" + query.Encode()
}

// ChartMarker is one plotted trend point
type ChartMarker struct {
	X, Y  int
	Label string
	Rate  int
	Wins  int
	Total int
}

// TrendChart is the geometry of the server-rendered SVG trend chart
type TrendChart struct {
	Width, Height int
	Left, Right   int
	Top, Bottom   int
	MidlineY      int
	Polyline      string
	Markers       []ChartMarker
}

// BuildTrendChart lays points out left to right on a 0..100 scale. A single
// point is centered.
func BuildTrendChart(points []stats.TrendPoint) TrendChart {
	chart := TrendChart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadding,
		Right:  chartWidth - chartPadding,
		Top:    chartPadding,
		Bottom: chartHeight - chartPadding,
	}
	chart.MidlineY = chart.yFor(50)

	span := chart.Right - chart.Left
	coords := make([]string, 0, len(points))
	for i, p := range points {
		x := chart.Left + span/2
		if len(points) > 1 {
			x = chart.Left + i*span/(len(points)-1)
		}
		y := chart.yFor(p.WinRate)
		chart.Markers = append(chart.Markers, ChartMarker{X: x, Y: y, Label: p.Date, Rate: p.WinRate, Wins: p.Wins, Total: p.Total})
		coords = append(coords, fmt.Sprintf("%d,%d", x, y))
	}
	chart.Polyline = strings.Join(coords, " ")
	return chart
}

func (c TrendChart) yFor(rate int) int {
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	return c.Top + (100-rate)*(c.Bottom-c.Top)/100
}
