// Package keywords counts watch-keyword hits across stored items.
// Deliberately cheap: exact substring/token matching only, no
// similarity scoring.
package keywords

import (
	"context"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/storage"
)

// Count is one keyword's hit total across the range.
type Count struct {
	Keyword string `json:"keyword"`
	Hits    int    `json:"hits"`
}

// Counter counts configured watch keywords against a store.
type Counter struct {
	store *storage.SnapshotStore
	watch []string
}

func New(store *storage.SnapshotStore, watch []string) *Counter {
	return &Counter{store: store, watch: watch}
}

// Watch returns the configured watch list in its configured order.
func (c *Counter) Watch() []string {
	return c.watch
}

// CountRange tallies case-insensitive matches per keyword over all
// items in range. Output order follows the watch list. An item
// matching a keyword more than once still counts once.
func (c *Counter) CountRange(ctx context.Context, keywordList []string, r dates.Range) ([]Count, int, error) {
	if len(keywordList) == 0 {
		keywordList = c.watch
	}
	if err := r.Validate(); err != nil {
		return nil, 0, err
	}

	read, err := c.store.ReadRange(r)
	if err != nil {
		return nil, 0, err
	}

	counts := make([]Count, len(keywordList))
	for i, kw := range keywordList {
		counts[i] = Count{Keyword: kw}
	}
	for _, set := range read.Sets {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		for _, it := range set.Items() {
			for i, kw := range keywordList {
				if news.MatchesKeyword(it.Title, kw) {
					counts[i].Hits++
				}
			}
		}
	}
	return counts, read.Skipped, nil
}
