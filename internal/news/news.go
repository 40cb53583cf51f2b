// Package news defines the immutable snapshot data model: ranked items,
// per-platform snapshots, and the per-tick SnapshotSet that ingestion
// appends and every query path reads.
package news

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Item is a single ranked headline captured from one platform.
// Immutable once written. Hotness is the platform-reported popularity
// signal and may be absent (nil).
type Item struct {
	Platform     string    `json:"platform"`
	PlatformName string    `json:"platform_name,omitempty"`
	Title        string    `json:"title"`
	URL          string    `json:"url,omitempty"`
	Rank         int       `json:"rank"`
	Hotness      *float64  `json:"hotness,omitempty"`
	CapturedAt   time.Time `json:"captured_at"`
}

// Key is the dedup identity of an item: platform plus normalized
// title. URLs are not part of the identity, the same story shows up
// under different URLs across crawls.
func (it Item) Key() string {
	return it.Platform + "|" + NormalizeTitle(it.Title)
}

// Snapshot is one platform's ordered item list at one capture time.
// Items must be rank-unique and rank-contiguous starting at 1.
type Snapshot struct {
	Platform     string `json:"platform"`
	PlatformName string `json:"platform_name,omitempty"`
	Items        []Item `json:"items"`
}

// SnapshotSet is everything captured across platforms in one tick.
type SnapshotSet struct {
	CapturedAt time.Time  `json:"captured_at"`
	Snapshots  []Snapshot `json:"snapshots"`
}

// Items flattens the set into a single slice, stamping each item with
// the set's platform and capture time so items are self-describing
// after the set is discarded.
func (s SnapshotSet) Items() []Item {
	var out []Item
	for _, snap := range s.Snapshots {
		for _, it := range snap.Items {
			it.Platform = snap.Platform
			it.PlatformName = snap.PlatformName
			it.CapturedAt = s.CapturedAt
			out = append(out, it)
		}
	}
	return out
}

// ValidationError reports malformed snapshot data or invalid
// configuration. It is fatal at write/config time and never coerced
// into an empty result.
type ValidationError struct {
	Op     string // what was being validated
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Op, e.Reason)
}

// Validate checks the rank invariants of every snapshot in the set.
func (s SnapshotSet) Validate() error {
	if s.CapturedAt.IsZero() {
		return &ValidationError{Op: "snapshot set", Reason: "captured_at is unset"}
	}
	if len(s.Snapshots) == 0 {
		return &ValidationError{Op: "snapshot set", Reason: "no snapshots"}
	}
	for _, snap := range s.Snapshots {
		if err := snap.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that items are rank-unique and rank-contiguous from 1.
func (s Snapshot) Validate() error {
	if s.Platform == "" {
		return &ValidationError{Op: "snapshot", Reason: "platform is empty"}
	}
	if len(s.Items) == 0 {
		return &ValidationError{Op: "snapshot " + s.Platform, Reason: "no items"}
	}
	seen := make(map[int]bool, len(s.Items))
	for _, it := range s.Items {
		if strings.TrimSpace(it.Title) == "" {
			return &ValidationError{
				Op:     "snapshot " + s.Platform,
				Reason: fmt.Sprintf("item at rank %d has empty title", it.Rank),
			}
		}
		if it.Rank < 1 || it.Rank > len(s.Items) {
			return &ValidationError{
				Op:     "snapshot " + s.Platform,
				Reason: fmt.Sprintf("rank %d out of range 1..%d", it.Rank, len(s.Items)),
			}
		}
		if seen[it.Rank] {
			return &ValidationError{
				Op:     "snapshot " + s.Platform,
				Reason: fmt.Sprintf("duplicate rank %d", it.Rank),
			}
		}
		seen[it.Rank] = true
	}
	return nil
}

// NormalizeTitle lowercases, strips punctuation, and collapses
// whitespace so identity survives cosmetic edits between crawls.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	b := make([]rune, 0, len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b = append(b, r)
		} else {
			b = append(b, ' ')
		}
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

// MatchesKeyword reports whether the title contains the keyword,
// case-insensitive. Short keywords (<=3 runes) must match a whole
// token so "ai" does not match "said"; longer keywords and phrases
// match as substrings.
func MatchesKeyword(title, keyword string) bool {
	t := strings.ToLower(title)
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" {
		return false
	}
	if len([]rune(k)) > 3 || strings.Contains(k, " ") {
		return strings.Contains(t, k)
	}
	for _, tok := range strings.FieldsFunc(t, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if tok == k {
			return true
		}
	}
	return false
}
