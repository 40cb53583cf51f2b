// Package insight compares topic activity across platforms: match
// counts, capture cadence, and keyword co-occurrence.
package insight

import (
	"context"
	"sort"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/score"
	"github.com/signalforge/signalforge/internal/storage"
	"github.com/signalforge/signalforge/internal/textsim"
)

// PlatformStat is one platform's footprint for a topic.
type PlatformStat struct {
	Platform  string  `json:"platform"`
	Matches   int     `json:"matches"`
	MeanScore float64 `json:"mean_score"`
}

// ActivityStat describes how often a platform was captured in range.
type ActivityStat struct {
	Platform           string  `json:"platform"`
	Ticks              int     `json:"ticks"`
	AvgIntervalMinutes float64 `json:"avg_interval_minutes"`
}

// Pair is a token co-occurrence count within matching titles.
type Pair struct {
	TokenA string `json:"token_a"`
	TokenB string `json:"token_b"`
	Count  int    `json:"count"`
}

// Engine computes cross-platform statistics. Stateless; safe for
// concurrent use.
type Engine struct {
	store   *storage.SnapshotStore
	weights score.Weights
}

func New(store *storage.SnapshotStore, weights score.Weights) *Engine {
	return &Engine{store: store, weights: weights}
}

// ComparePlatforms reports per-platform match count and mean
// composite score for a topic, sorted by count descending.
func (e *Engine) ComparePlatforms(ctx context.Context, topic string, r dates.Range) ([]PlatformStat, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	read, err := e.store.ReadRange(r)
	if err != nil {
		return nil, err
	}
	window := score.NewWindow(read.Sets)

	counts := make(map[string]int)
	sums := make(map[string]float64)
	for _, set := range read.Sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, it := range set.Items() {
			if !news.MatchesKeyword(it.Title, topic) {
				continue
			}
			counts[it.Platform]++
			sums[it.Platform] += window.Score(it, e.weights).Score
		}
	}

	stats := make([]PlatformStat, 0, len(counts))
	for p, n := range counts {
		stats = append(stats, PlatformStat{Platform: p, Matches: n, MeanScore: sums[p] / float64(n)})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Matches != stats[j].Matches {
			return stats[i].Matches > stats[j].Matches
		}
		return stats[i].Platform < stats[j].Platform
	})
	return stats, nil
}

// ActivityStats reports per-platform tick counts and the average
// interval between consecutive captures, surfacing which platforms
// update most often.
func (e *Engine) ActivityStats(ctx context.Context, r dates.Range) ([]ActivityStat, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	read, err := e.store.ReadRange(r)
	if err != nil {
		return nil, err
	}

	type track struct {
		ticks int
		first int64 // unix seconds
		last  int64
	}
	tracks := make(map[string]*track)
	for _, set := range read.Sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts := set.CapturedAt.Unix()
		for _, snap := range set.Snapshots {
			t, ok := tracks[snap.Platform]
			if !ok {
				t = &track{first: ts, last: ts}
				tracks[snap.Platform] = t
			}
			t.ticks++
			if ts < t.first {
				t.first = ts
			}
			if ts > t.last {
				t.last = ts
			}
		}
	}

	stats := make([]ActivityStat, 0, len(tracks))
	for p, t := range tracks {
		s := ActivityStat{Platform: p, Ticks: t.ticks}
		if t.ticks > 1 {
			s.AvgIntervalMinutes = float64(t.last-t.first) / float64(t.ticks-1) / 60.0
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Ticks != stats[j].Ticks {
			return stats[i].Ticks > stats[j].Ticks
		}
		return stats[i].Platform < stats[j].Platform
	})
	return stats, nil
}

// Cooccurrence counts token pairs appearing together in titles that
// match the topic, dropping pairs below minFreq (default 3).
func (e *Engine) Cooccurrence(ctx context.Context, topic string, r dates.Range, minFreq int) ([]Pair, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if minFreq <= 0 {
		minFreq = 3
	}
	read, err := e.store.ReadRange(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool) // dedup identical titles per identity
	pairs := make(map[[2]string]int)
	for _, set := range read.Sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, it := range set.Items() {
			if !news.MatchesKeyword(it.Title, topic) {
				continue
			}
			if seen[it.Key()] {
				continue
			}
			seen[it.Key()] = true
			countPairs(pairs, it.Title)
		}
	}

	out := make([]Pair, 0, len(pairs))
	for key, n := range pairs {
		if n >= minFreq {
			out = append(out, Pair{TokenA: key[0], TokenB: key[1], Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].TokenA != out[j].TokenA {
			return out[i].TokenA < out[j].TokenA
		}
		return out[i].TokenB < out[j].TokenB
	})
	return out, nil
}

func countPairs(pairs map[[2]string]int, title string) {
	set := textsim.Tokens(title)
	toks := make([]string, 0, len(set))
	for tok := range set {
		if len([]rune(tok)) >= 2 {
			toks = append(toks, tok)
		}
	}
	sort.Strings(toks)
	for i := 0; i < len(toks); i++ {
		for j := i + 1; j < len(toks); j++ {
			pairs[[2]string{toks[i], toks[j]}]++
		}
	}
}
