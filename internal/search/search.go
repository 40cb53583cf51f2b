// Package search implements keyword, fuzzy, and entity queries plus
// similarity-based retrieval over stored snapshot ranges.
package search

import (
	"context"
	"sort"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/score"
	"github.com/signalforge/signalforge/internal/storage"
	"github.com/signalforge/signalforge/internal/textsim"
)

// Mode selects how a query matches titles.
type Mode string

const (
	ModeKeyword Mode = "keyword"
	ModeFuzzy   Mode = "fuzzy"
	ModeEntity  Mode = "entity"
)

// Sort selects result ordering.
type Sort string

const (
	SortWeight Sort = "weight"
	SortTime   Sort = "time"
)

// Config carries the validated, read-only options the engine needs.
type Config struct {
	Weights          score.Weights
	DedupThreshold   float64
	RelatedThreshold float64
	DefaultLimit     int
	Entities         []string
}

// Options parameterizes one search call. Zero values take the engine
// defaults: keyword mode, weight sort, today's range, default limit.
type Options struct {
	Mode      Mode
	Sort      Sort
	Range     dates.Range
	Platforms []string
	Limit     int
}

// Match is a scored item, with the similarity that admitted it when
// the query path was similarity-based.
type Match struct {
	score.Scored
	Similarity float64 `json:"similarity,omitempty"`
}

// Result carries the returned matches plus the true totals, so a
// caller can always tell truncation from scarcity.
type Result struct {
	Matches    []Match `json:"matches"`
	TotalFound int     `json:"total_found"`
	Skipped    int     `json:"skipped_ticks,omitempty"`
}

// Engine answers queries against a snapshot store. Stateless between
// calls; safe for concurrent use.
type Engine struct {
	store *storage.SnapshotStore
	cfg   Config
}

func New(store *storage.SnapshotStore, cfg Config) *Engine {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	return &Engine{store: store, cfg: cfg}
}

// Search runs a query in the requested mode. The full matching set is
// scored before the limit is applied, never after a pre-truncation.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (Result, error) {
	opts = e.withDefaults(opts)
	if err := opts.Range.Validate(); err != nil {
		return Result{}, err
	}

	mode := opts.Mode
	if mode == ModeEntity && len(e.cfg.Entities) == 0 {
		// documented degradation: no entity extractor configured
		logger.Warn("Entity mode requested without a configured entity list, degrading to keyword mode")
		mode = ModeKeyword
	}

	read, err := e.store.ReadRange(opts.Range)
	if err != nil {
		return Result{}, err
	}
	sets := storage.FilterPlatforms(read.Sets, opts.Platforms)
	window := score.NewWindow(sets)

	var matched []news.Item
	for _, set := range sets {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for _, it := range set.Items() {
			if e.matches(mode, query, it.Title) {
				matched = append(matched, it)
			}
		}
	}

	matches := e.scoreAndSort(matched, window, opts.Sort, nil)
	res := Result{TotalFound: len(matches), Skipped: read.Skipped}
	if opts.Limit < len(matches) {
		matches = matches[:opts.Limit]
	}
	res.Matches = matches
	return res, nil
}

// FindSimilar returns items near-duplicate to the reference item,
// excluding the reference itself by identity. Uses the dedup
// threshold.
func (e *Engine) FindSimilar(ctx context.Context, ref news.Item, r dates.Range, limit int) (Result, error) {
	exclude := ref.Key()
	return e.similaritySearch(ctx, ref.Title, r, limit, e.cfg.DedupThreshold, textsim.Similarity, &exclude)
}

// FindSimilarText is FindSimilar for a free-text reference, which has
// no identity to exclude.
func (e *Engine) FindSimilarText(ctx context.Context, text string, r dates.Range, limit int) (Result, error) {
	return e.similaritySearch(ctx, text, r, limit, e.cfg.DedupThreshold, textsim.Similarity, nil)
}

// RelatedHistory finds items related but distinct from the topic in a
// historical window, yesterday by default. Uses the related threshold
// over the blended overlap and sequence score.
func (e *Engine) RelatedHistory(ctx context.Context, topic string, r dates.Range, limit int) (Result, error) {
	if r.IsZero() {
		r = dates.Yesterday()
	}
	return e.similaritySearch(ctx, topic, r, limit, e.cfg.RelatedThreshold, textsim.Combined, nil)
}

func (e *Engine) similaritySearch(ctx context.Context, text string, r dates.Range, limit int, threshold float64, simFn func(a, b string) float64, excludeKey *string) (Result, error) {
	if r.IsZero() {
		r = dates.Today()
	}
	if err := r.Validate(); err != nil {
		return Result{}, err
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	read, err := e.store.ReadRange(r)
	if err != nil {
		return Result{}, err
	}
	window := score.NewWindow(read.Sets)

	var matched []news.Item
	sim := make(map[string]float64)
	for _, set := range read.Sets {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for _, it := range set.Items() {
			if excludeKey != nil && it.Key() == *excludeKey {
				continue
			}
			s := simFn(text, it.Title)
			if s >= threshold {
				matched = append(matched, it)
				if s > sim[it.Key()] {
					sim[it.Key()] = s
				}
			}
		}
	}

	matches := e.scoreAndSort(matched, window, SortWeight, sim)
	res := Result{TotalFound: len(matches), Skipped: read.Skipped}
	if limit < len(matches) {
		matches = matches[:limit]
	}
	res.Matches = matches
	return res, nil
}

func (e *Engine) matches(mode Mode, query, title string) bool {
	switch mode {
	case ModeFuzzy:
		return textsim.Similarity(query, title) >= e.cfg.RelatedThreshold
	case ModeEntity:
		if !news.MatchesKeyword(title, query) {
			return false
		}
		for _, ent := range e.cfg.Entities {
			if news.MatchesKeyword(title, ent) {
				return true
			}
		}
		return false
	default:
		return news.MatchesKeyword(title, query)
	}
}

// scoreAndSort deduplicates by identity (best-ranked appearance wins),
// scores against the window, and orders deterministically.
func (e *Engine) scoreAndSort(items []news.Item, window *score.Window, by Sort, sim map[string]float64) []Match {
	best := make(map[string]news.Item)
	for _, it := range items {
		cur, ok := best[it.Key()]
		if !ok || it.Rank < cur.Rank || (it.Rank == cur.Rank && it.CapturedAt.Before(cur.CapturedAt)) {
			best[it.Key()] = it
		}
	}

	matches := make([]Match, 0, len(best))
	for key, it := range best {
		m := Match{Scored: window.Score(it, e.cfg.Weights)}
		if sim != nil {
			m.Similarity = sim[key]
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if by == SortTime {
			if !a.Item.CapturedAt.Equal(b.Item.CapturedAt) {
				return a.Item.CapturedAt.Before(b.Item.CapturedAt)
			}
		} else if a.Score != b.Score {
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
	return matches
}

func (e *Engine) withDefaults(opts Options) Options {
	if opts.Mode == "" {
		opts.Mode = ModeKeyword
	}
	if opts.Sort == "" {
		opts.Sort = SortWeight
	}
	if opts.Range.IsZero() {
		opts.Range = dates.Today()
	}
	if opts.Limit <= 0 {
		opts.Limit = e.cfg.DefaultLimit
	}
	return opts
}
