// Package collector fetches ranked trending lists from configured
// RSS and HTML sources and appends them to the snapshot store as one
// set per run.
package collector

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/metrics"
	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/retry"
	"github.com/signalforge/signalforge/internal/storage"
)

// Source is one configured platform feed.
type Source struct {
	Platform string `yaml:"platform"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // "rss" or "html"
	URL      string `yaml:"url"`
	Selector string `yaml:"selector,omitempty"` // item selector for html sources
	// HotnessAttr names an attribute on the selected element holding a
	// numeric popularity score (e.g. "data-score"). RSS sources carry
	// no such signal, so their items score hotness by rank share.
	HotnessAttr string `yaml:"hotness_attr,omitempty"`
	MaxItems    int    `yaml:"max_items,omitempty"`
}

// SourcesConfig is the YAML file structure:
//
//	sources:
//	  - platform: hackernews
//	    type: rss
//	    url: https://...
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured in %s", path)
	}
	return cfg.Sources, nil
}

// Collector captures one SnapshotSet per run across all sources.
type Collector struct {
	sources []Source
	store   *storage.SnapshotStore
	client  *http.Client
	parser  *gofeed.Parser
	retry   retry.RetryConfig
}

func New(sources []Source, store *storage.SnapshotStore, timeout time.Duration, retryCfg retry.RetryConfig) *Collector {
	return &Collector{
		sources: sources,
		store:   store,
		client:  &http.Client{Timeout: timeout},
		parser:  gofeed.NewParser(),
		retry:   retryCfg,
	}
}

// Collect fetches every source, builds a SnapshotSet stamped with the
// current minute, and appends it. A source that fails after retries
// is logged and skipped; the tick is still written if any source
// succeeded.
func (c *Collector) Collect(ctx context.Context) (news.SnapshotSet, error) {
	set := news.SnapshotSet{CapturedAt: time.Now().Truncate(time.Minute)}

	succeeded := 0
	for _, src := range c.sources {
		var snap news.Snapshot
		err := retry.WithRetry(ctx, c.retry, func() error {
			var ferr error
			snap, ferr = c.fetch(ctx, src)
			return ferr
		})
		if err != nil {
			logger.Error("Source failed, skipping", "platform", src.Platform, "error", err)
			continue
		}
		set.Snapshots = append(set.Snapshots, snap)
		succeeded++
		logger.Info("Source captured", "platform", src.Platform, "items", len(snap.Items))
	}

	if succeeded == 0 {
		return set, fmt.Errorf("all %d sources failed", len(c.sources))
	}

	if err := c.store.Append(set); err != nil {
		return set, err
	}
	metrics.Global.IncrementSnapshotsAppended(len(set.Items()))
	metrics.Global.SetLastRun()
	logger.Info("Snapshot tick recorded", "sources", succeeded, "of", len(c.sources))
	return set, nil
}

// entry is one fetched headline before ranking and dedup.
type entry struct {
	title   string
	url     string
	hotness *float64
}

func (c *Collector) fetch(ctx context.Context, src Source) (news.Snapshot, error) {
	snap := news.Snapshot{Platform: src.Platform, PlatformName: src.Name}

	var entries []entry
	var err error
	switch src.Type {
	case "html":
		entries, err = c.fetchHTML(ctx, src)
	default:
		entries, err = c.fetchRSS(ctx, src)
	}
	if err != nil {
		return snap, err
	}

	max := src.MaxItems
	if max <= 0 {
		max = 30
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		title := strings.TrimSpace(e.title)
		if title == "" {
			continue
		}
		norm := news.NormalizeTitle(title)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		snap.Items = append(snap.Items, news.Item{
			Title:   title,
			URL:     e.url,
			Rank:    len(snap.Items) + 1,
			Hotness: e.hotness,
		})
		if len(snap.Items) >= max {
			break
		}
	}
	if len(snap.Items) == 0 {
		return snap, fmt.Errorf("source %s returned no items", src.Platform)
	}
	return snap, nil
}

func (c *Collector) fetchRSS(ctx context.Context, src Source) ([]entry, error) {
	feed, err := c.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("error parsing RSS %s: %v", src.URL, err)
	}
	out := make([]entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		out = append(out, entry{title: it.Title, url: it.Link})
	}
	return out, nil
}

func (c *Collector) fetchHTML(ctx context.Context, src Source) ([]entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %v", err)
	}

	selector := src.Selector
	if selector == "" {
		selector = "a"
	}
	var out []entry
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		if title == "" {
			return
		}
		href, _ := s.Attr("href")
		e := entry{title: title, url: href}
		if src.HotnessAttr != "" {
			if raw, ok := s.Attr(src.HotnessAttr); ok {
				if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
					e.hotness = &v
				}
			}
		}
		out = append(out, e)
	})
	return out, nil
}
