package news

import (
	"testing"
	"time"
)

func validSet() SnapshotSet {
	return SnapshotSet{
		CapturedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Snapshots: []Snapshot{
			{
				Platform: "hackernews",
				Items: []Item{
					{Title: "Go 1.24 released", Rank: 1},
					{Title: "New kernel exploit found", Rank: 2},
				},
			},
		},
	}
}

func TestValidateAcceptsContiguousRanks(t *testing.T) {
	if err := validSet().Validate(); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
}

func TestValidateRejectsBadRanks(t *testing.T) {
	cases := map[string][]Item{
		"duplicate rank": {
			{Title: "a", Rank: 1},
			{Title: "b", Rank: 1},
		},
		"gap in ranks": {
			{Title: "a", Rank: 1},
			{Title: "b", Rank: 3},
		},
		"rank zero": {
			{Title: "a", Rank: 0},
		},
		"empty title": {
			{Title: "   ", Rank: 1},
		},
	}

	for name, items := range cases {
		set := validSet()
		set.Snapshots[0].Items = items
		err := set.Validate()
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if _, ok := err.(*ValidationError); !ok {
			t.Errorf("%s: expected *ValidationError, got %T", name, err)
		}
	}
}

func TestValidateRejectsEmptySet(t *testing.T) {
	set := SnapshotSet{CapturedAt: time.Now()}
	if err := set.Validate(); err == nil {
		t.Error("empty set should fail validation")
	}

	set = validSet()
	set.CapturedAt = time.Time{}
	if err := set.Validate(); err == nil {
		t.Error("zero captured_at should fail validation")
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  AI Breakthrough Announced!  ", "ai breakthrough announced"},
		{"Go 1.24, released", "go 1 24 released"},
		{"UPPER   lower", "upper lower"},
	}
	for _, c := range cases {
		if got := NormalizeTitle(c.in); got != c.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKeyIgnoresURL(t *testing.T) {
	a := Item{Platform: "x", Title: "Same Story", URL: "https://a.example/1"}
	b := Item{Platform: "x", Title: "same story!", URL: "https://b.example/2"}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}

	c := Item{Platform: "y", Title: "Same Story"}
	if a.Key() == c.Key() {
		t.Error("different platforms must not share identity")
	}
}

func TestMatchesKeyword(t *testing.T) {
	cases := []struct {
		title, keyword string
		want           bool
	}{
		{"OpenAI ships new model", "openai", true},
		{"Climate summit concludes", "summit", true},
		{"He said nothing new", "ai", false},  // short keyword must not substring-match
		{"AI beats benchmark", "ai", true},    // whole-token match
		{"Go 1.24 released", "go", true},
		{"Egos clash at summit", "go", false},
		{"Supply chain attack", "supply chain", true},
		{"Anything", "", false},
	}
	for _, c := range cases {
		if got := MatchesKeyword(c.title, c.keyword); got != c.want {
			t.Errorf("MatchesKeyword(%q, %q) = %v, want %v", c.title, c.keyword, got, c.want)
		}
	}
}
