package score

import (
	"testing"
	"time"

	"github.com/signalforge/signalforge/internal/news"
)

func tick(day int, hour int, titles ...string) news.SnapshotSet {
	snap := news.Snapshot{Platform: "hn"}
	for i, title := range titles {
		snap.Items = append(snap.Items, news.Item{Title: title, Rank: i + 1})
	}
	return news.SnapshotSet{
		CapturedAt: time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC),
		Snapshots:  []news.Snapshot{snap},
	}
}

func TestRankScoreModes(t *testing.T) {
	if got := rankScore(1, RankModeInverse); got != 1.0 {
		t.Errorf("inverse rank 1 = %v", got)
	}
	if got := rankScore(10, RankModeInverse); got != 0.1 {
		t.Errorf("inverse rank 10 = %v", got)
	}
	if got := rankScore(1, RankModeLinear); got != 1.0 {
		t.Errorf("linear rank 1 = %v", got)
	}
	if got := rankScore(10, RankModeLinear); got != 0.1 {
		t.Errorf("linear rank 10 = %v", got)
	}
	if got := rankScore(50, RankModeLinear); got != 0.1 {
		t.Errorf("linear rank 50 should clamp to 0.1, got %v", got)
	}
	if got := rankScore(0, RankModeInverse); got != 1.0 {
		t.Errorf("rank 0 should be treated as rank 1, got %v", got)
	}
}

func TestFreqScoreSaturates(t *testing.T) {
	if got := freqScore(3); got != 0.3 {
		t.Errorf("freq 3 = %v", got)
	}
	if got := freqScore(25); got != 1.0 {
		t.Errorf("freq 25 should saturate at 1.0, got %v", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	w := NewWindow([]news.SnapshotSet{
		tick(1, 9, "alpha", "beta"),
		tick(1, 12, "alpha", "gamma"),
	})
	it := news.Item{Platform: "hn", Title: "alpha", Rank: 1}

	first := w.Score(it, DefaultWeights())
	for i := 0; i < 5; i++ {
		if got := w.Score(it, DefaultWeights()); got.Score != first.Score {
			t.Fatalf("score not deterministic: %v vs %v", got.Score, first.Score)
		}
	}
	if first.Appearance != 2 {
		t.Errorf("alpha appeared in 2 ticks, got %d", first.Appearance)
	}
}

func TestCompositeIsNormalized(t *testing.T) {
	w := NewWindow([]news.SnapshotSet{tick(1, 9, "alpha")})
	s := w.Score(news.Item{Platform: "hn", Title: "alpha", Rank: 1}, DefaultWeights())
	if s.Score < 0 || s.Score > 1 {
		t.Errorf("composite outside [0,1]: %v", s.Score)
	}
}

func TestHotScoreFallsBackToHighRankShare(t *testing.T) {
	// alpha: rank 1 then rank 8, so half its appearances are top-5
	w := NewWindow([]news.SnapshotSet{
		tick(1, 9, "alpha", "b", "c", "d", "e", "f", "g", "h"),
		tick(1, 12, "b", "c", "d", "e", "f", "g", "h", "alpha"),
	})
	got := w.hotScore(news.Item{Platform: "hn", Title: "alpha", Rank: 1})
	if got != 0.5 {
		t.Errorf("high-rank share = %v, want 0.5", got)
	}
}

func TestHotScoreMinMaxOverWindow(t *testing.T) {
	low, high := 10.0, 90.0
	set := news.SnapshotSet{
		CapturedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Snapshots: []news.Snapshot{{
			Platform: "weibo",
			Items: []news.Item{
				{Title: "cool", Rank: 1, Hotness: &low},
				{Title: "hot", Rank: 2, Hotness: &high},
			},
		}},
	}
	w := NewWindow([]news.SnapshotSet{set})

	if got := w.hotScore(news.Item{Platform: "weibo", Title: "hot", Rank: 2, Hotness: &high}); got != 1.0 {
		t.Errorf("max hotness should scale to 1.0, got %v", got)
	}
	if got := w.hotScore(news.Item{Platform: "weibo", Title: "cool", Rank: 1, Hotness: &low}); got != 0.0 {
		t.Errorf("min hotness should scale to 0.0, got %v", got)
	}
}

func TestTopNOrderingAndTieBreak(t *testing.T) {
	w := NewWindow([]news.SnapshotSet{
		tick(1, 9, "alpha", "beta"),
		tick(1, 12, "alpha", "beta"),
	})

	top, err := w.TopN(10, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d results, want 2 distinct identities", len(top))
	}
	if top[0].Item.Title != "alpha" {
		t.Errorf("rank-1 story should lead, got %q", top[0].Item.Title)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Error("results not sorted by score descending")
		}
	}
}

func TestTopNRespectsLimit(t *testing.T) {
	w := NewWindow([]news.SnapshotSet{tick(1, 9, "a", "b", "c", "d", "e")})
	top, err := w.TopN(3, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Errorf("got %d, want 3", len(top))
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := (Weights{Rank: -1, Freq: 1}).Validate(); err == nil {
		t.Error("negative weight accepted")
	}
	if err := (Weights{}).Validate(); err == nil {
		t.Error("all-zero weights accepted")
	}
	if err := (Weights{Rank: 1, RankMode: "exponential"}).Validate(); err == nil {
		t.Error("unknown rank mode accepted")
	}
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("default weights rejected: %v", err)
	}
}
