package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/score"
	"github.com/signalforge/signalforge/internal/storage"
)

func testConfig() Config {
	return Config{
		Weights:          score.DefaultWeights(),
		DedupThreshold:   0.6,
		RelatedThreshold: 0.4,
		DefaultLimit:     50,
	}
}

func seedStore(t *testing.T, sets ...news.SnapshotSet) *storage.SnapshotStore {
	t.Helper()
	store, err := storage.NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, set := range sets {
		if err := store.Append(set); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func set(captured time.Time, snaps ...news.Snapshot) news.SnapshotSet {
	return news.SnapshotSet{CapturedAt: captured, Snapshots: snaps}
}

func snap(platform string, titles ...string) news.Snapshot {
	s := news.Snapshot{Platform: platform}
	for i, title := range titles {
		s.Items = append(s.Items, news.Item{Title: title, Rank: i + 1})
	}
	return s
}

func TestSearchKeywordMode(t *testing.T) {
	day := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	store := seedStore(t,
		set(day, snap("hn", "Go generics deep dive", "Kernel 6.8 released")),
	)
	engine := New(store, testConfig())

	res, err := engine.Search(context.Background(), "kernel", Options{Range: dates.Single(day)})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFound != 1 || len(res.Matches) != 1 {
		t.Fatalf("got %d found, %d returned", res.TotalFound, len(res.Matches))
	}
	if res.Matches[0].Item.Title != "Kernel 6.8 released" {
		t.Errorf("wrong match: %q", res.Matches[0].Item.Title)
	}
}

func TestSearchFuzzyModeUsesRelatedThreshold(t *testing.T) {
	day := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	store := seedStore(t,
		set(day, snap("hn", "Electric cars hit new sales record", "Quantum computing milestone")),
	)
	engine := New(store, testConfig())

	res, err := engine.Search(context.Background(), "electric cars sales", Options{
		Mode:  ModeFuzzy,
		Range: dates.Single(day),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFound != 1 {
		t.Fatalf("fuzzy match count = %d, want 1", res.TotalFound)
	}
}

func TestSearchEmptyRange(t *testing.T) {
	store := seedStore(t)
	engine := New(store, testConfig())

	r := dates.Range{
		Start: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := engine.Search(context.Background(), "x", Options{Range: r})
	var empty *dates.EmptyRangeError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRangeError, got %v", err)
	}
}

func TestSearchNoDataIsEmptyNotError(t *testing.T) {
	store := seedStore(t)
	engine := New(store, testConfig())

	res, err := engine.Search(context.Background(), "anything", Options{
		Range: dates.Single(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("missing data should not error: %v", err)
	}
	if res.TotalFound != 0 {
		t.Errorf("TotalFound = %d, want 0", res.TotalFound)
	}
}

func TestSearchLimitTruncatesAfterRanking(t *testing.T) {
	day := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	store := seedStore(t,
		set(day, snap("hn",
			"ai chips boom", "ai startups funded", "ai regulation drafted",
			"ai safety summit", "ai in medicine")),
	)
	engine := New(store, testConfig())

	res, err := engine.Search(context.Background(), "ai", Options{Range: dates.Single(day), Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFound != 5 {
		t.Errorf("TotalFound = %d, want the full match count 5", res.TotalFound)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("returned %d, want 2", len(res.Matches))
	}
	// the top item by rank must survive truncation
	if res.Matches[0].Item.Title != "ai chips boom" {
		t.Errorf("top-ranked match lost to truncation: %q", res.Matches[0].Item.Title)
	}
}

func TestFindSimilarExcludesReferenceAndFindsTwin(t *testing.T) {
	day := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	store := seedStore(t, set(day,
		snap("X", "AI Breakthrough Announced"),
		snap("Y", "AI Breakthrough Announced"),
	))
	engine := New(store, testConfig())

	ref := news.Item{Platform: "X", Title: "AI Breakthrough Announced"}
	res, err := engine.FindSimilar(context.Background(), ref, dates.Single(day), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want just the twin", len(res.Matches))
	}
	m := res.Matches[0]
	if m.Item.Platform != "Y" {
		t.Errorf("reference item not excluded, matched platform %q", m.Item.Platform)
	}
	if m.Similarity < 0.6 {
		t.Errorf("identical titles similarity = %v, want >= 0.6", m.Similarity)
	}
}

func TestRelatedHistoryDefaultsToYesterday(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	tick := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 9, 0, 0, 0, time.Local)
	store := seedStore(t, set(tick, snap("hn", "chip shortage eases for carmakers")))
	engine := New(store, testConfig())

	res, err := engine.RelatedHistory(context.Background(), "chip shortage", dates.Range{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFound != 1 {
		t.Errorf("TotalFound = %d, want 1 from yesterday's data", res.TotalFound)
	}
}

func TestEntityModeDegradesToKeyword(t *testing.T) {
	day := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	store := seedStore(t, set(day, snap("hn", "Tesla expands factory")))

	// no entity list configured: entity mode behaves as keyword mode
	engine := New(store, testConfig())
	res, err := engine.Search(context.Background(), "tesla", Options{Mode: ModeEntity, Range: dates.Single(day)})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFound != 1 {
		t.Errorf("degraded entity search found %d, want 1", res.TotalFound)
	}

	// with an entity list, only entity-bearing titles match
	cfg := testConfig()
	cfg.Entities = []string{"Tesla"}
	engine = New(store, cfg)
	res, err = engine.Search(context.Background(), "factory", Options{Mode: ModeEntity, Range: dates.Single(day)})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFound != 1 {
		t.Errorf("entity search found %d, want 1", res.TotalFound)
	}
}

func TestSearchSortByTime(t *testing.T) {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	store := seedStore(t,
		set(day.Add(12*time.Hour), snap("hn", "storm warning extended")),
		set(day.Add(9*time.Hour), snap("reddit", "storm hits coast")),
	)
	engine := New(store, testConfig())

	res, err := engine.Search(context.Background(), "storm", Options{
		Range: dates.Single(day),
		Sort:  SortTime,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("got %d matches", len(res.Matches))
	}
	if !res.Matches[0].Item.CapturedAt.Before(res.Matches[1].Item.CapturedAt) {
		t.Error("time sort not ascending")
	}
}
