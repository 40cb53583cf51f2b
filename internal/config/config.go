// Package config loads engine configuration from an optional YAML
// file plus environment overrides. The result is validated once at
// startup and read-only afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalforge/signalforge/internal/news"
	"github.com/signalforge/signalforge/internal/score"
	"github.com/signalforge/signalforge/internal/trend"
)

type Config struct {
	// Storage settings
	DataDir string `yaml:"data_dir"`

	// Scoring settings
	Weights score.Weights `yaml:"weights"`

	// Similarity thresholds, related must not exceed dedup
	DedupThreshold   float64 `yaml:"dedup_threshold"`
	RelatedThreshold float64 `yaml:"related_threshold"`

	// Query defaults
	DefaultDateRange   string   `yaml:"default_date_range"` // "today" or "yesterday"
	ResultLimitDefault int      `yaml:"result_limit_default"`
	WatchKeywords      []string `yaml:"watch_keywords"`
	Entities           []string `yaml:"entities"`

	// Trend analyzer knobs
	Trend trend.Config `yaml:"trend"`

	// Cache TTLs
	SearchCacheTTL    time.Duration `yaml:"-"`
	AnalyticsCacheTTL time.Duration `yaml:"-"`

	// Gemini settings, optional: AI tools degrade without a key
	GeminiAPIKey      string `yaml:"-"`
	GeminiModel       string `yaml:"gemini_model"`
	MaxGeminiRequests int    `yaml:"max_gemini_requests"` // per day, 0 = unlimited

	// Collector settings
	FeedsConfigPath string        `yaml:"feeds_config_path"`
	RequestTimeout  time.Duration `yaml:"-"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryDelay      time.Duration `yaml:"-"`

	// Monitoring HTTP endpoint
	MonitorAddr string `yaml:"monitor_addr"`

	Debug bool `yaml:"-"`
}

// Load reads the YAML file named by SIGNALFORGE_CONFIG (if the
// default path is absent that is fine), applies environment
// overrides, and validates.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            "output",
		Weights:            score.DefaultWeights(),
		DedupThreshold:     0.6,
		RelatedThreshold:   0.4,
		DefaultDateRange:   "today",
		ResultLimitDefault: 50,
		SearchCacheTTL:     15 * time.Minute,
		AnalyticsCacheTTL:  30 * time.Minute,
		GeminiModel:        "gemini-1.5-flash",
		MaxGeminiRequests:  100,
		FeedsConfigPath:    "configs/feeds.yaml",
		RequestTimeout:     30 * time.Second,
		RetryAttempts:      3,
		RetryDelay:         5 * time.Second,
		MonitorAddr:        ":8080",
	}

	path := getEnvOrDefault("SIGNALFORGE_CONFIG", "configs/signalforge.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
		}
		if err := cfg.parseDurations(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	// Environment overrides
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DataDir = getEnvOrDefault("SIGNALFORGE_DATA_DIR", cfg.DataDir)
	cfg.MonitorAddr = getEnvOrDefault("SIGNALFORGE_MONITOR_ADDR", cfg.MonitorAddr)
	cfg.FeedsConfigPath = getEnvOrDefault("SIGNALFORGE_FEEDS", cfg.FeedsConfigPath)

	if v := os.Getenv("SIGNALFORGE_DEDUP_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DedupThreshold = f
		}
	}
	if v := os.Getenv("SIGNALFORGE_RELATED_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RelatedThreshold = f
		}
	}
	if v := os.Getenv("SIGNALFORGE_RESULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ResultLimitDefault = n
		}
	}
	if v := os.Getenv("SIGNALFORGE_WATCH_KEYWORDS"); v != "" {
		cfg.WatchKeywords = splitList(v)
	}
	if v := os.Getenv("MAX_GEMINI_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxGeminiRequests = n
		}
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return &news.ValidationError{Op: "config", Reason: "data_dir is empty"}
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.DedupThreshold < 0 || c.DedupThreshold > 1 {
		return &news.ValidationError{Op: "config", Reason: "dedup_threshold must be in [0,1]"}
	}
	if c.RelatedThreshold < 0 || c.RelatedThreshold > 1 {
		return &news.ValidationError{Op: "config", Reason: "related_threshold must be in [0,1]"}
	}
	if c.RelatedThreshold > c.DedupThreshold {
		return &news.ValidationError{Op: "config", Reason: "related_threshold must not exceed dedup_threshold"}
	}
	if c.DefaultDateRange != "today" && c.DefaultDateRange != "yesterday" {
		return &news.ValidationError{Op: "config", Reason: "default_date_range must be 'today' or 'yesterday'"}
	}
	if c.ResultLimitDefault <= 0 {
		return &news.ValidationError{Op: "config", Reason: "result_limit_default must be positive"}
	}
	return nil
}

// parseDurations reads the duration fields separately: the YAML
// decoder cannot decode "15m" into a time.Duration on its own.
func (c *Config) parseDurations(data []byte) error {
	var raw struct {
		SearchCacheTTL    string `yaml:"search_cache_ttl"`
		AnalyticsCacheTTL string `yaml:"analytics_cache_ttl"`
		RequestTimeout    string `yaml:"request_timeout"`
		RetryDelay        string `yaml:"retry_delay"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, f := range []struct {
		val string
		dst *time.Duration
	}{
		{raw.SearchCacheTTL, &c.SearchCacheTTL},
		{raw.AnalyticsCacheTTL, &c.AnalyticsCacheTTL},
		{raw.RequestTimeout, &c.RequestTimeout},
		{raw.RetryDelay, &c.RetryDelay},
	} {
		if f.val == "" {
			continue
		}
		d, err := time.ParseDuration(f.val)
		if err != nil {
			return err
		}
		*f.dst = d
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
