// Package gemini wraps the Gemini API for narration tasks: sentiment
// readings and report prose. Requests are cached and counted against
// a daily cap.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/signalforge/signalforge/internal/cache"
	"github.com/signalforge/signalforge/internal/metrics"
	"github.com/signalforge/signalforge/internal/ratelimit"
)

type Client struct {
	client  *genai.Client
	model   string
	limiter *ratelimit.AIRateLimiter
	cache   *cache.Cache
	ttl     time.Duration
}

func NewClient(apiKey, model string, limiter *ratelimit.AIRateLimiter, c *cache.Cache) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		limiter: limiter,
		cache:   c,
		ttl:     30 * time.Minute,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Narrate sends the prompt and returns sanitized prose. Identical
// prompts within the cache TTL are served from cache without
// consuming quota.
func (c *Client) Narrate(ctx context.Context, prompt string) (string, error) {
	key := c.cache.GenerateKey("narrate", prompt)
	if cached, ok := c.cache.Get(key); ok {
		if text, ok := cached.(string); ok {
			c.limiter.RecordCacheHit(len(prompt) / 4)
			metrics.Global.IncrementCacheHits()
			return text, nil
		}
	}
	metrics.Global.IncrementCacheMisses()

	if err := c.limiter.UseGemini(); err != nil {
		return "", err
	}
	metrics.Global.IncrementAIRequests()

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	text := SanitizeAIText(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	c.cache.Set(key, text, c.ttl)
	return text, nil
}

var (
	parenNoteRe   = regexp.MustCompile(`\((?i:note|disclaimer)[^)]*\)`)
	bracketNoteRe = regexp.MustCompile(`\[(?i:note|disclaimer)[^\]]*\]`)
	lineNoteRe    = regexp.MustCompile(`(?i)^\s*(note|disclaimer)\s*:.*$`)
)

// SanitizeAIText strips the boilerplate disclaimers models like to
// attach: parenthesized or bracketed notes inline, and whole lines
// starting with "Note:".
func SanitizeAIText(text string) string {
	text = parenNoteRe.ReplaceAllString(text, "")
	text = bracketNoteRe.ReplaceAllString(text, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if lineNoteRe.MatchString(line) {
			continue
		}
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
