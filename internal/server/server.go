// Package server exposes the analytics engine over MCP stdio so any
// MCP-capable agent can query snapshots, search, and analytics as
// named tools.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/signalforge/signalforge/internal/cache"
	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/insight"
	"github.com/signalforge/signalforge/internal/keywords"
	"github.com/signalforge/signalforge/internal/metrics"
	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/report"
	"github.com/signalforge/signalforge/internal/score"
	"github.com/signalforge/signalforge/internal/search"
	"github.com/signalforge/signalforge/internal/storage"
	"github.com/signalforge/signalforge/internal/trend"
)

const serverInstructions = `SignalForge analyzes periodic ranked snapshots of trending news across platforms. ` +
	`Use these tools to: fetch the latest or historical ranked headlines; search by keyword, fuzzy ` +
	`similarity, or entity; find near-duplicate or related stories; classify topic trends, lifecycle, ` +
	`and anomalies; compare platforms; count watch keywords; and generate digests. Key tools: ` +
	`get_latest_news, search_news, analyze_topic_trend, get_trending_topics.`

// Deps bundles everything the tool handlers need.
type Deps struct {
	Cfg      *config.Config
	Store    *storage.SnapshotStore
	Engine   *search.Engine
	Analyzer *trend.Analyzer
	Insights *insight.Engine
	Counter  *keywords.Counter
	Reports  *report.Builder
	Cache    *cache.Cache
	Extra    func() map[string]interface{} // extra status sections (rate limiter etc.)
}

// New builds the MCP server with every tool registered.
func New(d Deps) *server.MCPServer {
	srv := server.NewMCPServer(
		"signalforge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	registerTools(srv, d)
	return srv
}

func registerTools(srv *server.MCPServer, d Deps) {
	srv.AddTool(
		mcp.NewTool("get_latest_news",
			mcp.WithDescription("Get the most recent snapshot tick, ranked by composite score. Optionally filter platforms."),
			mcp.WithTitleAnnotation("Latest News"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("platforms",
				mcp.Description("Comma-separated platform filter (e.g. 'hackernews,reddit')"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max items (default: configured result limit)"),
			),
		),
		d.handleLatest(),
	)

	srv.AddTool(
		mcp.NewTool("get_news_by_date",
			mcp.WithDescription("Get ranked news for a specific date. Accepts 'today', 'yesterday', 'N days ago', or YYYY-MM-DD."),
			mcp.WithTitleAnnotation("News By Date"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("date",
				mcp.Required(),
				mcp.Description("Date query, e.g. 'yesterday' or '2025-01-03'"),
			),
			mcp.WithString("platforms",
				mcp.Description("Comma-separated platform filter"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max items (default: configured result limit)"),
			),
		),
		d.handleByDate(),
	)

	srv.AddTool(
		mcp.NewTool("search_news",
			mcp.WithDescription("Search stored news by keyword, fuzzy similarity, or entity match over a date range."),
			mcp.WithTitleAnnotation("Search News"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search text"),
			),
			mcp.WithString("mode",
				mcp.Description("Match mode: keyword (default), fuzzy, or entity"),
			),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: today)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end (default: same as start)"),
			),
			mcp.WithString("platforms",
				mcp.Description("Comma-separated platform filter"),
			),
			mcp.WithString("sort",
				mcp.Description("Result order: weight (default) or time"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max results (default 50)"),
			),
		),
		d.handleSearch(),
	)

	srv.AddTool(
		mcp.NewTool("find_similar_news",
			mcp.WithDescription("Find stories near-duplicate to a reference title, above the dedup threshold."),
			mcp.WithTitleAnnotation("Find Similar"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Reference title or text"),
			),
			mcp.WithString("platform",
				mcp.Description("Platform of the reference item, so it can be excluded from results"),
			),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: today)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max results (default 50)"),
			),
		),
		d.handleFindSimilar(),
	)

	srv.AddTool(
		mcp.NewTool("search_related_history",
			mcp.WithDescription("Find historically related but distinct stories for a topic, above the related threshold. Defaults to yesterday."),
			mcp.WithTitleAnnotation("Related History"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("topic",
				mcp.Required(),
				mcp.Description("Topic text"),
			),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: yesterday)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max results (default 50)"),
			),
		),
		d.handleRelatedHistory(),
	)

	srv.AddTool(
		mcp.NewTool("analyze_topic_trend",
			mcp.WithDescription("Classify a topic's per-day series: trend direction, lifecycle, anomaly days, and a naive next-day projection."),
			mcp.WithTitleAnnotation("Topic Trend"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("topic",
				mcp.Required(),
				mcp.Description("Topic text"),
			),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: 7 days ago)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end (default: today)"),
			),
		),
		d.handleTrend(),
	)

	srv.AddTool(
		mcp.NewTool("analyze_data_insights",
			mcp.WithDescription("Cross-platform insight for a topic: per-platform counts and scores, capture activity, and keyword co-occurrence pairs."),
			mcp.WithTitleAnnotation("Data Insights"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("topic",
				mcp.Required(),
				mcp.Description("Topic text"),
			),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: today)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end"),
			),
			mcp.WithNumber("min_pair_frequency",
				mcp.Description("Minimum co-occurrence count to report a pair (default 3)"),
			),
		),
		d.handleInsights(),
	)

	srv.AddTool(
		mcp.NewTool("get_trending_topics",
			mcp.WithDescription("Top stories across a date range by composite score, with watch-keyword hit counts."),
			mcp.WithTitleAnnotation("Trending Topics"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: today)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max topics (default 10)"),
			),
		),
		d.handleTrending(),
	)

	srv.AddTool(
		mcp.NewTool("analyze_sentiment",
			mcp.WithDescription("Judge how coverage of a topic is leaning. Returns headline stats plus an AI reading when a narrator is configured."),
			mcp.WithTitleAnnotation("Sentiment"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("topic",
				mcp.Required(),
				mcp.Description("Topic text"),
			),
			mcp.WithString("start_date",
				mcp.Description("Range start (default: today)"),
			),
			mcp.WithString("end_date",
				mcp.Description("Range end"),
			),
			mcp.WithBoolean("narrate",
				mcp.Description("Include the AI reading (default true; stats are returned either way)"),
			),
		),
		d.handleSentiment(),
	)

	srv.AddTool(
		mcp.NewTool("generate_summary_report",
			mcp.WithDescription("Render a markdown digest: top stories, watch keywords, platform activity, and topic trends for weekly reports."),
			mcp.WithTitleAnnotation("Summary Report"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("period",
				mcp.Description("Report period: daily (default) or weekly"),
			),
			mcp.WithString("date",
				mcp.Description("Report date (default: today; weekly reports cover the 7 days ending here)"),
			),
		),
		d.handleReport(),
	)

	srv.AddTool(
		mcp.NewTool("get_system_status",
			mcp.WithDescription("Engine health: store stats, query metrics, AI quota, and configuration summary."),
			mcp.WithTitleAnnotation("System Status"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
		),
		d.handleStatus(),
	)
}

// instrument wraps a handler with call counting and timing.
func instrument(fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics.Global.IncrementToolCalls()
		start := time.Now()
		res, err := fn(ctx, req)
		metrics.Global.RecordQueryTime(time.Since(start))
		if err != nil || (res != nil && res.IsError) {
			metrics.Global.IncrementToolErrors()
		}
		return res, err
	}
}

func (d Deps) handleLatest() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		set, skipped, ok, err := d.Store.Latest()
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(skipped)
		if !ok {
			return mcp.NewToolResultText("No snapshots recorded yet."), nil
		}

		sets := storage.FilterPlatforms([]news.SnapshotSet{set}, listArg(req, "platforms"))
		limit := intArg(req, "limit", d.Cfg.ResultLimitDefault)
		top, err := score.NewWindow(sets).TopN(limit, d.Cfg.Weights)
		if err != nil {
			return toolError(err), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Snapshot at %s, %d items", set.CapturedAt.Format("2006-01-02 15:04"), len(top))
		if skipped > 0 {
			fmt.Fprintf(&b, " (%d corrupt ticks skipped, newer data may exist)", skipped)
		}
		b.WriteString(":\n\n")
		writeScored(&b, top)
		return mcp.NewToolResultText(b.String()), nil
	})
}

func (d Deps) handleByDate() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dateQuery, _ := req.GetArguments()["date"].(string)
		day, err := dates.ParseQuery(dateQuery)
		if err != nil {
			return toolError(err), nil
		}

		read, err := d.Store.ReadDay(day)
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(read.Skipped)
		if len(read.Sets) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No snapshots on %s.", day.Format(dates.Layout))), nil
		}

		sets := storage.FilterPlatforms(read.Sets, listArg(req, "platforms"))
		limit := intArg(req, "limit", d.Cfg.ResultLimitDefault)
		top, err := score.NewWindow(sets).TopN(limit, d.Cfg.Weights)
		if err != nil {
			return toolError(err), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s: %d ticks, top %d items", day.Format(dates.Layout), len(read.Sets), len(top))
		if read.Skipped > 0 {
			fmt.Fprintf(&b, " (%d corrupt ticks skipped)", read.Skipped)
		}
		b.WriteString(":\n\n")
		writeScored(&b, top)
		return mcp.NewToolResultText(b.String()), nil
	})
}

func (d Deps) handleSearch() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, _ := req.GetArguments()["query"].(string)
		mode, _ := req.GetArguments()["mode"].(string)
		sortBy, _ := req.GetArguments()["sort"].(string)

		r, err := d.rangeArgs(req)
		if err != nil {
			return toolError(err), nil
		}

		key := d.Cache.GenerateKey("search_news", fmt.Sprintf("%s|%s|%s|%s|%v|%d",
			query, mode, sortBy, r, listArg(req, "platforms"), intArg(req, "limit", 0)))
		if cached, ok := d.Cache.Get(key); ok {
			if text, ok := cached.(string); ok {
				metrics.Global.IncrementCacheHits()
				return mcp.NewToolResultText(text), nil
			}
		}
		metrics.Global.IncrementCacheMisses()

		res, err := d.Engine.Search(ctx, query, search.Options{
			Mode:      search.Mode(mode),
			Sort:      search.Sort(sortBy),
			Range:     r,
			Platforms: listArg(req, "platforms"),
			Limit:     intArg(req, "limit", 0),
		})
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(res.Skipped)

		text := renderResult(fmt.Sprintf("Search %q", query), res)
		d.Cache.Set(key, text, d.Cfg.SearchCacheTTL)
		return mcp.NewToolResultText(text), nil
	})
}

func (d Deps) handleFindSimilar() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, _ := req.GetArguments()["title"].(string)
		platform, _ := req.GetArguments()["platform"].(string)

		r, err := d.rangeArgs(req)
		if err != nil {
			return toolError(err), nil
		}
		limit := intArg(req, "limit", 0)

		var res search.Result
		if platform != "" {
			res, err = d.Engine.FindSimilar(ctx, news.Item{Platform: platform, Title: title}, r, limit)
		} else {
			res, err = d.Engine.FindSimilarText(ctx, title, r, limit)
		}
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(res.Skipped)
		return mcp.NewToolResultText(renderResult(fmt.Sprintf("Similar to %q", title), res)), nil
	})
}

func (d Deps) handleRelatedHistory() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, _ := req.GetArguments()["topic"].(string)

		r, err := d.optionalRangeArgs(req)
		if err != nil {
			return toolError(err), nil
		}

		res, err := d.Engine.RelatedHistory(ctx, topic, r, intArg(req, "limit", 0))
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(res.Skipped)
		return mcp.NewToolResultText(renderResult(fmt.Sprintf("Related history for %q", topic), res)), nil
	})
}

func (d Deps) handleTrend() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, _ := req.GetArguments()["topic"].(string)

		fallback, err := dates.NewRange(time.Now().AddDate(0, 0, -7), time.Now())
		if err != nil {
			return toolError(err), nil
		}
		start, _ := req.GetArguments()["start_date"].(string)
		end, _ := req.GetArguments()["end_date"].(string)
		r, err := dates.ParseRangeQuery(start, end, fallback)
		if err != nil {
			return toolError(err), nil
		}

		key := d.Cache.GenerateKey("analyze_topic_trend", topic+"|"+r.String())
		if cached, ok := d.Cache.Get(key); ok {
			if text, ok := cached.(string); ok {
				metrics.Global.IncrementCacheHits()
				return mcp.NewToolResultText(text), nil
			}
		}
		metrics.Global.IncrementCacheMisses()

		analysis, err := d.Analyzer.AnalyzeTopic(ctx, topic, r)
		if err != nil {
			var insufficient *trend.InsufficientDataError
			if errors.As(err, &insufficient) {
				return mcp.NewToolResultText(insufficient.Error()), nil
			}
			return toolError(err), nil
		}

		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return toolError(err), nil
		}
		text := string(data)
		d.Cache.Set(key, text, d.Cfg.AnalyticsCacheTTL)
		return mcp.NewToolResultText(text), nil
	})
}

func (d Deps) handleInsights() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, _ := req.GetArguments()["topic"].(string)

		r, err := d.rangeArgs(req)
		if err != nil {
			return toolError(err), nil
		}

		platforms, err := d.Insights.ComparePlatforms(ctx, topic, r)
		if err != nil {
			return toolError(err), nil
		}
		activity, err := d.Insights.ActivityStats(ctx, r)
		if err != nil {
			return toolError(err), nil
		}
		pairs, err := d.Insights.Cooccurrence(ctx, topic, r, intArg(req, "min_pair_frequency", 0))
		if err != nil {
			return toolError(err), nil
		}

		data, err := json.MarshalIndent(map[string]interface{}{
			"topic":        topic,
			"range":        r.String(),
			"platforms":    platforms,
			"activity":     activity,
			"cooccurrence": pairs,
		}, "", "  ")
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (d Deps) handleTrending() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := d.rangeArgs(req)
		if err != nil {
			return toolError(err), nil
		}

		read, err := d.Store.ReadRange(r)
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(read.Skipped)

		top, err := score.NewWindow(read.Sets).TopN(intArg(req, "limit", 10), d.Cfg.Weights)
		if err != nil {
			return toolError(err), nil
		}
		if len(top) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No items in %s.", r)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Trending in %s:\n\n", r)
		writeScored(&b, top)

		counts, skipped, err := d.Counter.CountRange(ctx, nil, r)
		if err != nil {
			return toolError(err), nil
		}
		metrics.Global.AddTicksSkipped(skipped)
		if len(counts) > 0 {
			b.WriteString("\nWatch keywords:\n")
			for _, c := range counts {
				fmt.Fprintf(&b, "- %s: %d\n", c.Keyword, c.Hits)
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	})
}

func (d Deps) handleSentiment() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, _ := req.GetArguments()["topic"].(string)

		r, err := d.rangeArgs(req)
		if err != nil {
			return toolError(err), nil
		}

		narrate := true
		if v, ok := req.GetArguments()["narrate"].(bool); ok {
			narrate = v
		}

		text, err := d.Reports.Sentiment(ctx, topic, r, narrate)
		if err != nil {
			var insufficient *trend.InsufficientDataError
			if errors.As(err, &insufficient) {
				return mcp.NewToolResultText(insufficient.Error()), nil
			}
			return toolError(err), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}

func (d Deps) handleReport() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		period, _ := req.GetArguments()["period"].(string)
		dateQuery, _ := req.GetArguments()["date"].(string)

		day := time.Now()
		if dateQuery != "" {
			var err error
			day, err = dates.ParseQuery(dateQuery)
			if err != nil {
				return toolError(err), nil
			}
		}

		var text string
		var err error
		if period == "weekly" {
			text, err = d.Reports.Weekly(ctx, day)
		} else {
			text, err = d.Reports.Daily(ctx, day)
		}
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}

func (d Deps) handleStatus() server.ToolHandlerFunc {
	return instrument(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := map[string]interface{}{
			"store":   d.Store.GetStats(),
			"metrics": metrics.Global.GetStats(),
			"config": map[string]interface{}{
				"weights":           d.Cfg.Weights,
				"dedup_threshold":   d.Cfg.DedupThreshold,
				"related_threshold": d.Cfg.RelatedThreshold,
				"watch_keywords":    d.Cfg.WatchKeywords,
			},
		}
		if d.Extra != nil {
			for k, v := range d.Extra() {
				status[k] = v
			}
		}

		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

// rangeArgs reads start_date/end_date with a today fallback.
func (d Deps) rangeArgs(req mcp.CallToolRequest) (dates.Range, error) {
	fallback := dates.Today()
	if d.Cfg.DefaultDateRange == "yesterday" {
		fallback = dates.Yesterday()
	}
	start, _ := req.GetArguments()["start_date"].(string)
	end, _ := req.GetArguments()["end_date"].(string)
	return dates.ParseRangeQuery(start, end, fallback)
}

// optionalRangeArgs returns a zero range when no dates were given, so
// the callee applies its own default window.
func (d Deps) optionalRangeArgs(req mcp.CallToolRequest) (dates.Range, error) {
	start, _ := req.GetArguments()["start_date"].(string)
	end, _ := req.GetArguments()["end_date"].(string)
	if start == "" && end == "" {
		return dates.Range{}, nil
	}
	return dates.ParseRangeQuery(start, end, dates.Yesterday())
}

func renderResult(header string, res search.Result) string {
	if res.TotalFound == 0 {
		return header + ": no matches."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d matches, %d returned", header, res.TotalFound, len(res.Matches))
	if res.Skipped > 0 {
		fmt.Fprintf(&b, " (%d corrupt ticks skipped)", res.Skipped)
	}
	b.WriteString(":\n\n")
	for i, m := range res.Matches {
		fmt.Fprintf(&b, "%d. [%s] %s (score %.2f", i+1, m.Item.Platform, m.Item.Title, m.Score)
		if m.Similarity > 0 {
			fmt.Fprintf(&b, ", sim %.2f", m.Similarity)
		}
		fmt.Fprintf(&b, ", %s)\n", m.Item.CapturedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func writeScored(b *strings.Builder, items []score.Scored) {
	for i, s := range items {
		fmt.Fprintf(b, "%d. [%s] %s (score %.2f, rank %d, seen %dx)\n",
			i+1, s.Item.Platform, s.Item.Title, s.Score, s.Item.Rank, s.Appearance)
	}
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func listArg(req mcp.CallToolRequest, key string) []string {
	v, ok := req.GetArguments()[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
