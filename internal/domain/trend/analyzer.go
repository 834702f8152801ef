// Package trend fits score history against time: a least-squares trend
// line with short-horizon predictions, a recent-change velocity, and
// local extrema detection.
package trend

import (
	"sort"
	"time"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// Trend classifications.
const (
	TrendWorsening        = "worsening"
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// Direction classifications.
const (
	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"
	DirectionStable     = "stable"
)

// Inflection point kinds.
const (
	InflectionPeak   = "peak"
	InflectionValley = "valley"
)

// slopeDeadZone is the |slope| band treated as noise: only a change of
// more than one point per day moves the trend off "stable".
const slopeDeadZone = 1.0

// Prediction horizons in days past the newest data point.
const (
	horizonShort = 7
	horizonLong  = 30
)

// defaultVelocityWindowDays bounds the velocity lookback.
const defaultVelocityWindowDays = 7

// Analysis is the result of fitting a trend over score history.
// Predictions are nil when history is insufficient.
type Analysis struct {
	Trend        string   `json:"trend"`
	Direction    string   `json:"direction"`
	RateOfChange float64  `json:"rate_of_change"`
	Predicted7d  *float64 `json:"predicted_score_7d"`
	Predicted30d *float64 `json:"predicted_score_30d"`
	DataPoints   int      `json:"data_points"`
}

// InflectionPoint is a local extremum in chronologically ordered
// score history.
type InflectionPoint struct {
	Date      time.Time `json:"date"`
	Score     float64   `json:"score"`
	Kind      string    `json:"type"`
	Magnitude float64   `json:"change_magnitude"`
}

// Analyzer fits trends over score histories. Stateless and safe for
// concurrent use.
type Analyzer struct {
	now func() time.Time
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithClock overrides the wall clock used by the velocity window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer creates a trend analyzer with configuration options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeTrend fits a least-squares line to the history and classifies
// its direction. Fewer than two points is a defined terminal case
// reported as insufficient data, not an error. DataPoints reports the
// original input length regardless of ordering or duplicates.
func (a *Analyzer) AnalyzeTrend(history []model.ScoreSnapshot) Analysis {
	if len(history) < 2 {
		return Analysis{
			Trend:        TrendInsufficientData,
			Direction:    DirectionStable,
			RateOfChange: 0.0,
			DataPoints:   len(history),
		}
	}

	sorted := sortByDate(history)

	base := sorted[0].Date
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, s := range sorted {
		xs[i] = float64(dayOffset(base, s.Date))
		ys[i] = s.Score
	}

	line := stat.FitLine(xs, ys)

	direction := DirectionStable
	trendLabel := TrendStable
	switch {
	case line.Slope > slopeDeadZone:
		direction = DirectionIncreasing
		trendLabel = TrendWorsening
	case line.Slope < -slopeDeadZone:
		direction = DirectionDecreasing
		trendLabel = TrendImproving
	}

	lastOffset := xs[len(xs)-1]
	pred7 := stat.Round(stat.ClampScore(line.At(lastOffset+horizonShort)), 2)
	pred30 := stat.Round(stat.ClampScore(line.At(lastOffset+horizonLong)), 2)

	return Analysis{
		Trend:        trendLabel,
		Direction:    direction,
		RateOfChange: line.Slope,
		Predicted7d:  &pred7,
		Predicted30d: &pred30,
		DataPoints:   len(history),
	}
}

// Velocity computes the average daily score change over the trailing
// window, measured against the wall clock rather than the newest data
// point. Fewer than two points inside the window yields 0.
func (a *Analyzer) Velocity(history []model.ScoreSnapshot, windowDays int) float64 {
	if len(history) < 2 {
		return 0.0
	}
	if windowDays <= 0 {
		windowDays = defaultVelocityWindowDays
	}

	cutoff := a.now().AddDate(0, 0, -windowDays)
	recent := make([]model.ScoreSnapshot, 0, len(history))
	for _, s := range sortByDate(history) {
		if !s.Date.Before(cutoff) {
			recent = append(recent, s)
		}
	}
	if len(recent) < 2 {
		return 0.0
	}

	oldest := recent[0]
	newest := recent[len(recent)-1]
	days := dayOffset(oldest.Date, newest.Date)
	if days == 0 {
		return 0.0
	}
	return stat.Round((newest.Score-oldest.Score)/float64(days), 3)
}

// InflectionPoints finds strict local maxima and minima in the
// chronologically sorted history, excluding the endpoints, and returns
// them largest swing first. Fewer than three points yields no results.
func (a *Analyzer) InflectionPoints(history []model.ScoreSnapshot) []InflectionPoint {
	if len(history) < 3 {
		return []InflectionPoint{}
	}

	sorted := sortByDate(history)
	points := []InflectionPoint{}
	for i := 1; i < len(sorted)-1; i++ {
		prev, curr, next := sorted[i-1].Score, sorted[i].Score, sorted[i+1].Score

		var kind string
		switch {
		case curr > prev && curr > next:
			kind = InflectionPeak
		case curr < prev && curr < next:
			kind = InflectionValley
		default:
			continue // ties and monotone runs are not extrema
		}

		points = append(points, InflectionPoint{
			Date:      sorted[i].Date,
			Score:     curr,
			Kind:      kind,
			Magnitude: abs(curr-prev) + abs(curr-next),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Magnitude > points[j].Magnitude
	})
	return points
}

func sortByDate(history []model.ScoreSnapshot) []model.ScoreSnapshot {
	sorted := make([]model.ScoreSnapshot, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// dayOffset returns whole days from a to b, truncated toward zero.
func dayOffset(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
