// Package trend classifies a topic's per-day time series: direction,
// lifecycle shape, anomaly spikes, and a naive next-day projection.
package trend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/search"
)

// Trend labels.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Lifecycle labels.
const (
	LifecycleFlash     = "flash"
	LifecycleSustained = "sustained"
	LifecycleEmerging  = "emerging"
	LifecycleFading    = "fading"
)

// PredictionNote is attached to every projection so callers cannot
// mistake it for a validated forecast.
const PredictionNote = "naive linear extrapolation, not a statistically validated forecast"

// InsufficientDataError means the range held no matching items at
// all. It is an expected outcome for sparse topics, not a fault.
type InsufficientDataError struct {
	Topic string
	Range dates.Range
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: no items matching %q in %s", e.Topic, e.Range)
}

// Config holds the classification knobs. Zero values take defaults.
type Config struct {
	RisingMargin       float64 `yaml:"rising_margin" json:"rising_margin"`             // default 1.2
	FlashConcentration float64 `yaml:"flash_concentration" json:"flash_concentration"` // default 0.5
	SustainedDays      int     `yaml:"sustained_days" json:"sustained_days"`           // default 3
	AnomalyZScore      float64 `yaml:"anomaly_z_score" json:"anomaly_z_score"`         // default 2.0
	MinPriorDays       int     `yaml:"min_prior_days" json:"min_prior_days"`           // default 3
}

func (c Config) withDefaults() Config {
	if c.RisingMargin <= 0 {
		c.RisingMargin = 1.2
	}
	if c.FlashConcentration <= 0 {
		c.FlashConcentration = 0.5
	}
	if c.SustainedDays <= 0 {
		c.SustainedDays = 3
	}
	if c.AnomalyZScore <= 0 {
		c.AnomalyZScore = 2.0
	}
	if c.MinPriorDays <= 0 {
		c.MinPriorDays = 3
	}
	return c
}

// DayPoint is one bucket of the derived topic series.
type DayPoint struct {
	Date      time.Time `json:"date"`
	Count     int       `json:"count"`
	MeanScore float64   `json:"mean_score"`
}

// Anomaly is a day whose count spikes against its trailing history.
type Anomaly struct {
	Date   time.Time `json:"date"`
	Count  int       `json:"count"`
	ZScore float64   `json:"z_score"`
}

// Prediction is the next-day projection from a least-squares fit.
type Prediction struct {
	NextDayCount float64 `json:"next_day_count"`
	Slope        float64 `json:"slope"`
	Note         string  `json:"note"`
}

// Analysis is the full classification result for one topic and range.
type Analysis struct {
	Topic      string     `json:"topic"`
	Range      string     `json:"range"`
	Series     []DayPoint `json:"series"`
	Trend      string     `json:"trend"`
	Lifecycle  string     `json:"lifecycle"`
	Anomalies  []Anomaly  `json:"anomalies,omitempty"`
	Prediction Prediction `json:"prediction"`
}

// Analyzer derives topic series through the search engine and
// classifies them. Stateless; safe for concurrent use.
type Analyzer struct {
	engine *search.Engine
	cfg    Config
}

func New(engine *search.Engine, cfg Config) *Analyzer {
	return &Analyzer{engine: engine, cfg: cfg.withDefaults()}
}

// AnalyzeTopic buckets fuzzy matches for the topic per day across the
// range and classifies the resulting series. Cancellation is checked
// between day buckets, the only long loop here.
func (a *Analyzer) AnalyzeTopic(ctx context.Context, topic string, r dates.Range) (*Analysis, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	series, err := a.BuildSeries(ctx, topic, r)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range series {
		total += p.Count
	}
	if total == 0 {
		return nil, &InsufficientDataError{Topic: topic, Range: r}
	}

	return &Analysis{
		Topic:     topic,
		Range:     r.String(),
		Series:    series,
		Trend:     a.classifyTrend(series),
		Lifecycle: a.classifyLifecycle(series, total),
		Anomalies: a.detectAnomalies(series),
		Prediction: Prediction{
			NextDayCount: predictNext(series),
			Slope:        slope(series),
			Note:         PredictionNote,
		},
	}, nil
}

// BuildSeries produces the per-day (count, mean score) buckets.
// Missing days yield count 0.
func (a *Analyzer) BuildSeries(ctx context.Context, topic string, r dates.Range) ([]DayPoint, error) {
	days := r.Days()
	series := make([]DayPoint, 0, len(days))
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.engine.Search(ctx, topic, search.Options{
			Mode:  search.ModeFuzzy,
			Range: dates.Single(day),
			Limit: math.MaxInt32,
		})
		if err != nil {
			return nil, err
		}
		p := DayPoint{Date: day, Count: res.TotalFound}
		if len(res.Matches) > 0 {
			sum := 0.0
			for _, m := range res.Matches {
				sum += m.Score
			}
			p.MeanScore = sum / float64(len(res.Matches))
		}
		series = append(series, p)
	}
	return series, nil
}

// classifyTrend compares the second half's mean count to the first
// half's. Odd-length series drop the middle day so equal halves on a
// flat series stay equal.
func (a *Analyzer) classifyTrend(series []DayPoint) string {
	n := len(series)
	if n < 2 {
		return TrendStable
	}
	half := n / 2
	first := meanCount(series[:half])
	second := meanCount(series[n-half:])

	switch {
	case first == 0 && second == 0:
		return TrendStable
	case first == 0:
		return TrendRising
	case second > first*a.cfg.RisingMargin:
		return TrendRising
	case second < first/a.cfg.RisingMargin:
		return TrendFalling
	default:
		return TrendStable
	}
}

func (a *Analyzer) classifyLifecycle(series []DayPoint, total int) string {
	peakIdx, peak := 0, 0
	nonzeroDays := 0
	for i, p := range series {
		if p.Count > peak {
			peak, peakIdx = p.Count, i
		}
		if p.Count > 0 {
			nonzeroDays++
		}
	}

	if float64(peak)/float64(total) > a.cfg.FlashConcentration {
		return LifecycleFlash
	}
	if nonzeroDays >= a.cfg.SustainedDays {
		return LifecycleSustained
	}

	n := len(series)
	third := n / 3
	if third == 0 {
		third = 1
	}
	switch {
	case peakIdx >= n-third:
		return LifecycleEmerging
	case peakIdx < third:
		return LifecycleFading
	default:
		// peak in the middle third: lean on where the volume sits
		if sumCount(series[n-third:]) >= sumCount(series[:third]) {
			return LifecycleEmerging
		}
		return LifecycleFading
	}
}

// detectAnomalies flags days whose count z-scores high against the
// trailing days before them. Days with too little history, or a flat
// history (zero std), are skipped rather than flagged.
func (a *Analyzer) detectAnomalies(series []DayPoint) []Anomaly {
	var out []Anomaly
	for i := range series {
		if i < a.cfg.MinPriorDays {
			continue
		}
		mean, std := meanStd(series[:i])
		if std == 0 {
			continue
		}
		z := (float64(series[i].Count) - mean) / std
		if z > a.cfg.AnomalyZScore {
			out = append(out, Anomaly{Date: series[i].Date, Count: series[i].Count, ZScore: z})
		}
	}
	return out
}

// predictNext projects the next day's count from a least-squares line
// over the observed series, clamped at zero.
func predictNext(series []DayPoint) float64 {
	m, b := fitLine(series)
	next := b + m*float64(len(series))
	if next < 0 {
		next = 0
	}
	return next
}

func slope(series []DayPoint) float64 {
	m, _ := fitLine(series)
	return m
}

func fitLine(series []DayPoint) (m, b float64) {
	n := float64(len(series))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		x, y := float64(i), float64(p.Count)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	m = (n*sumXY - sumX*sumY) / denom
	b = (sumY - m*sumX) / n
	return m, b
}

func meanCount(points []DayPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return float64(sumCount(points)) / float64(len(points))
}

func sumCount(points []DayPoint) int {
	total := 0
	for _, p := range points {
		total += p.Count
	}
	return total
}

func meanStd(points []DayPoint) (mean, std float64) {
	if len(points) == 0 {
		return 0, 0
	}
	mean = meanCount(points)
	var ss float64
	for _, p := range points {
		d := float64(p.Count) - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(len(points)))
	return mean, std
}
