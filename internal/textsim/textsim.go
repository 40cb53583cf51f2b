// Package textsim measures normalized textual similarity between
// titles for dedup and related-history matching.
package textsim

import (
	"strings"

	"github.com/signalforge/signalforge/internal/news"
)

// Tokens splits a title into its normalized word set.
func Tokens(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(news.NormalizeTitle(text)) {
		set[tok] = true
	}
	return set
}

// Similarity returns a score in [0, 1]. It is symmetric and reflexive
// for non-empty text, and adding shared tokens never lowers it.
//
// Containment short-circuits to 1.0 so a single-word topic still
// fully matches a long headline that contains it. Otherwise the score
// is the token overlap normalized by the smaller set, which keeps
// short titles from degenerating to near-zero.
func Similarity(a, b string) float64 {
	na, nb := news.NormalizeTitle(a), news.NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 1.0
	}

	ta, tb := Tokens(na), Tokens(nb)
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	if smaller == 0 {
		return 0
	}
	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	return float64(shared) / float64(smaller)
}

// SequenceRatio is a cheap bigram Dice coefficient over runes, used
// as the sequence component when combining with keyword overlap for
// related-history scoring.
func SequenceRatio(a, b string) float64 {
	na, nb := news.NormalizeTitle(a), news.NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	ba, bb := bigrams(na), bigrams(nb)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	shared := 0
	for g, n := range ba {
		if m := bb[g]; m > 0 {
			if m < n {
				shared += m
			} else {
				shared += n
			}
		}
	}
	total := 0
	for _, n := range ba {
		total += n
	}
	for _, n := range bb {
		total += n
	}
	return 2.0 * float64(shared) / float64(total)
}

// Combined blends token overlap with sequence similarity, weighted
// toward the overlap signal. Used by related-history search.
func Combined(a, b string) float64 {
	return 0.7*Similarity(a, b) + 0.3*SequenceRatio(a, b)
}

func bigrams(s string) map[string]int {
	r := []rune(s)
	grams := make(map[string]int)
	for i := 0; i+1 < len(r); i++ {
		grams[string(r[i:i+2])]++
	}
	return grams
}
