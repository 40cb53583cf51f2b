// Package score ranks news items by a weighted composite of rank
// position, appearance frequency, and hotness across a window of
// snapshot sets.
package score

import (
	"math"
	"sort"

	"github.com/signalforge/signalforge/internal/news"
)

// Rank curve modes. Platforms report positions on different scales,
// so the decay shape is configuration rather than a fixed rule.
const (
	RankModeInverse = "inverse" // 1/r: rank 1 -> 1.0, rank 10 -> 0.1
	RankModeLinear  = "linear"  // (11-min(r,10))/10: rank 1 -> 1.0, rank 10+ -> 0.1
)

// Weights controls the relative contribution of each component.
// Zero-weight components are skipped entirely.
type Weights struct {
	Rank     float64 `yaml:"rank" json:"rank"`
	Freq     float64 `yaml:"freq" json:"freq"`
	Hotness  float64 `yaml:"hotness" json:"hotness"`
	RankMode string  `yaml:"rank_mode,omitempty" json:"rank_mode,omitempty"`
}

// DefaultWeights mirrors the standing rank/frequency/hotness split.
func DefaultWeights() Weights {
	return Weights{Rank: 0.6, Freq: 0.3, Hotness: 0.1, RankMode: RankModeInverse}
}

// Validate rejects negative or all-zero weights and unknown rank modes.
func (w Weights) Validate() error {
	if w.Rank < 0 || w.Freq < 0 || w.Hotness < 0 {
		return &news.ValidationError{Op: "weights", Reason: "weights must be non-negative"}
	}
	if w.Rank+w.Freq+w.Hotness == 0 {
		return &news.ValidationError{Op: "weights", Reason: "at least one weight must be positive"}
	}
	switch w.RankMode {
	case "", RankModeInverse, RankModeLinear:
	default:
		return &news.ValidationError{Op: "weights", Reason: "unknown rank_mode " + w.RankMode}
	}
	return nil
}

// Scored pairs an item with its composite score and the per-component
// breakdown, each component normalized to [0, 1].
type Scored struct {
	Item       news.Item `json:"item"`
	Score      float64   `json:"score"`
	RankScore  float64   `json:"rank_score"`
	FreqScore  float64   `json:"freq_score"`
	HotScore   float64   `json:"hot_score"`
	Appearance int       `json:"appearances"`
}

// Window indexes a set of snapshot ticks so the same data answers
// frequency, hotness range, and ranking queries without rescanning.
type Window struct {
	items   []news.Item
	freq    map[string]int
	highRun map[string]int // appearances at rank <= 5
	hotMin  float64
	hotMax  float64
	hasHot  bool
}

// NewWindow flattens the sets and builds the per-identity indexes.
func NewWindow(sets []news.SnapshotSet) *Window {
	w := &Window{
		freq:    make(map[string]int),
		highRun: make(map[string]int),
		hotMin:  math.Inf(1),
		hotMax:  math.Inf(-1),
	}
	for _, set := range sets {
		for _, it := range set.Items() {
			key := it.Key()
			w.items = append(w.items, it)
			w.freq[key]++
			if it.Rank <= 5 {
				w.highRun[key]++
			}
			if it.Hotness != nil {
				w.hasHot = true
				if *it.Hotness < w.hotMin {
					w.hotMin = *it.Hotness
				}
				if *it.Hotness > w.hotMax {
					w.hotMax = *it.Hotness
				}
			}
		}
	}
	return w
}

// Size returns the number of flattened items in the window.
func (w *Window) Size() int {
	return len(w.items)
}

// Frequency returns how often the identity appeared in the window.
func (w *Window) Frequency(key string) int {
	return w.freq[key]
}

// rankScore decays with position; rank 1 always scores 1.0. Ranks
// below 1 are treated as rank 1.
func rankScore(rank int, mode string) float64 {
	if rank < 1 {
		rank = 1
	}
	if mode == RankModeLinear {
		if rank > 10 {
			rank = 10
		}
		return float64(11-rank) / 10.0
	}
	return 1.0 / float64(rank)
}

// Frequency saturates at 10 appearances.
func freqScore(count int) float64 {
	if count > 10 {
		count = 10
	}
	return float64(count) / 10.0
}

// hotScore prefers the platform-reported hotness, min-max scaled over
// the window. When no item in the window carries hotness, it falls
// back to the share of appearances at rank 5 or better.
func (w *Window) hotScore(it news.Item) float64 {
	if w.hasHot && it.Hotness != nil {
		if w.hotMax == w.hotMin {
			return 1.0
		}
		return (*it.Hotness - w.hotMin) / (w.hotMax - w.hotMin)
	}
	key := it.Key()
	total := w.freq[key]
	if total == 0 {
		return 0
	}
	return float64(w.highRun[key]) / float64(total)
}

// Score computes the composite for one item in this window.
func (w *Window) Score(it news.Item, weights Weights) Scored {
	s := Scored{
		Item:       it,
		RankScore:  rankScore(it.Rank, weights.RankMode),
		FreqScore:  freqScore(w.freq[it.Key()]),
		HotScore:   w.hotScore(it),
		Appearance: w.freq[it.Key()],
	}
	sum := weights.Rank + weights.Freq + weights.Hotness
	s.Score = (weights.Rank*s.RankScore + weights.Freq*s.FreqScore + weights.Hotness*s.HotScore) / sum
	return s
}

// TopN scores every distinct identity in the window and returns the
// best n, keeping for each identity its best-ranked appearance. Ties
// break deterministically: capture time ascending, then platform,
// then title.
func (w *Window) TopN(n int, weights Weights) ([]Scored, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 || len(w.items) == 0 {
		return nil, nil
	}

	best := make(map[string]news.Item)
	for _, it := range w.items {
		cur, ok := best[it.Key()]
		if !ok || it.Rank < cur.Rank || (it.Rank == cur.Rank && it.CapturedAt.Before(cur.CapturedAt)) {
			best[it.Key()] = it
		}
	}

	scored := make([]Scored, 0, len(best))
	for _, it := range best {
		scored = append(scored, w.Score(it, weights))
	}
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Item.CapturedAt.Equal(b.Item.CapturedAt) {
			return a.Item.CapturedAt.Before(b.Item.CapturedAt)
		}
		if a.Item.Platform != b.Item.Platform {
			return a.Item.Platform < b.Item.Platform
		}
		return a.Item.Title < b.Item.Title
	})

	if n > len(scored) {
		n = len(scored)
	}
	return scored[:n], nil
}
