// Package report renders markdown digests and sentiment readings
// from engine output, with optional AI narration on top.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/insight"
	"github.com/signalforge/signalforge/internal/keywords"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/score"
	"github.com/signalforge/signalforge/internal/search"
	"github.com/signalforge/signalforge/internal/storage"
	"github.com/signalforge/signalforge/internal/trend"
)

// Narrator produces prose from a prompt. Nil means no AI configured
// and reports stay purely statistical.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// Builder assembles reports from the analysis engines.
type Builder struct {
	store    *storage.SnapshotStore
	engine   *search.Engine
	analyzer *trend.Analyzer
	insights *insight.Engine
	counter  *keywords.Counter
	weights  score.Weights
	narrator Narrator
}

func NewBuilder(store *storage.SnapshotStore, engine *search.Engine, analyzer *trend.Analyzer, insights *insight.Engine, counter *keywords.Counter, weights score.Weights, narrator Narrator) *Builder {
	return &Builder{
		store:    store,
		engine:   engine,
		analyzer: analyzer,
		insights: insights,
		counter:  counter,
		weights:  weights,
		narrator: narrator,
	}
}

// BuildSentimentPrompt renders the headline list a model needs to
// judge how coverage of a topic is leaning.
func BuildSentimentPrompt(topic string, matches []search.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Below are trending news headlines about %q.\n", topic)
	b.WriteString("Classify the overall sentiment of the coverage as positive, negative, or mixed, ")
	b.WriteString("and explain in two or three sentences which headlines drive that reading.\n\nHeadlines:\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, m.Item.Platform, m.Item.Title)
	}
	return b.String()
}

// Sentiment searches the topic and narrates a sentiment reading. When
// narration is off or no narrator is configured the statistical
// summary is returned alone; a missing narrator is logged, not hidden.
func (b *Builder) Sentiment(ctx context.Context, topic string, r dates.Range, narrate bool) (string, error) {
	res, err := b.engine.Search(ctx, topic, search.Options{Range: r, Limit: 20})
	if err != nil {
		return "", err
	}
	if res.TotalFound == 0 {
		return "", &trend.InsufficientDataError{Topic: topic, Range: r}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "## Sentiment: %s\n\n", topic)
	fmt.Fprintf(&out, "Matched %d headlines (%d shown).\n\n", res.TotalFound, len(res.Matches))
	for _, m := range res.Matches {
		fmt.Fprintf(&out, "- [%s] %s (score %.2f)\n", m.Item.Platform, m.Item.Title, m.Score)
	}

	if !narrate {
		return out.String(), nil
	}
	if b.narrator == nil {
		logger.Warn("No AI narrator configured, returning sentiment stats without narration")
		return out.String(), nil
	}

	prose, err := b.narrator.Narrate(ctx, BuildSentimentPrompt(topic, res.Matches))
	if err != nil {
		logger.Warn("Sentiment narration failed, returning stats only", "error", err)
		return out.String(), nil
	}
	out.WriteString("\n### Reading\n\n")
	out.WriteString(prose)
	out.WriteString("\n")
	return out.String(), nil
}

// Daily renders the one-day digest: top stories, watch keyword hits,
// and platform activity.
func (b *Builder) Daily(ctx context.Context, day time.Time) (string, error) {
	return b.digest(ctx, dates.Single(day), fmt.Sprintf("Daily Digest — %s", dates.Day(day).Format(dates.Layout)))
}

// Weekly renders the digest for the seven days ending on the given
// day, adding per-topic trends for the most frequent stories.
func (b *Builder) Weekly(ctx context.Context, end time.Time) (string, error) {
	r, err := dates.NewRange(end.AddDate(0, 0, -6), end)
	if err != nil {
		return "", err
	}
	md, err := b.digest(ctx, r, fmt.Sprintf("Weekly Digest — %s", r))
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteString(md)

	top, err := b.topStories(r, 3)
	if err != nil {
		return "", err
	}
	for _, s := range top {
		analysis, err := b.analyzer.AnalyzeTopic(ctx, s.Item.Title, r)
		if err != nil {
			var insufficient *trend.InsufficientDataError
			if errors.As(err, &insufficient) {
				continue
			}
			return "", err
		}
		fmt.Fprintf(&out, "\n### Trend: %s\n\ntrend %s, lifecycle %s, next-day estimate %.1f\n",
			s.Item.Title, analysis.Trend, analysis.Lifecycle, analysis.Prediction.NextDayCount)
	}
	return out.String(), nil
}

func (b *Builder) digest(ctx context.Context, r dates.Range, title string) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", title)

	top, err := b.topStories(r, 10)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		out.WriteString("No snapshots recorded in this range.\n")
		return out.String(), nil
	}

	out.WriteString("## Top Stories\n\n")
	for i, s := range top {
		fmt.Fprintf(&out, "%d. [%s] %s (score %.2f, seen %dx)\n",
			i+1, s.Item.Platform, s.Item.Title, s.Score, s.Appearance)
	}

	counts, _, err := b.counter.CountRange(ctx, nil, r)
	if err != nil {
		return "", err
	}
	if len(counts) > 0 {
		out.WriteString("\n## Watch Keywords\n\n")
		for _, c := range counts {
			fmt.Fprintf(&out, "- %s: %d\n", c.Keyword, c.Hits)
		}
	}

	activity, err := b.insights.ActivityStats(ctx, r)
	if err != nil {
		return "", err
	}
	if len(activity) > 0 {
		out.WriteString("\n## Platform Activity\n\n")
		for _, a := range activity {
			fmt.Fprintf(&out, "- %s: %d ticks", a.Platform, a.Ticks)
			if a.AvgIntervalMinutes > 0 {
				fmt.Fprintf(&out, ", every %.0f min", a.AvgIntervalMinutes)
			}
			out.WriteString("\n")
		}
	}

	if b.narrator != nil {
		prompt := "Summarize the following trending-news digest in one short paragraph:\n\n" + out.String()
		if prose, err := b.narrator.Narrate(ctx, prompt); err == nil {
			out.WriteString("\n## Summary\n\n")
			out.WriteString(prose)
			out.WriteString("\n")
		} else {
			logger.Warn("Digest narration failed, returning stats only", "error", err)
		}
	}
	return out.String(), nil
}

func (b *Builder) topStories(r dates.Range, n int) ([]score.Scored, error) {
	read, err := b.store.ReadRange(r)
	if err != nil {
		return nil, err
	}
	return score.NewWindow(read.Sets).TopN(n, b.weights)
}
