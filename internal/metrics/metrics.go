package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	SnapshotsAppended int64
	ItemsIngested     int64
	ToolCalls         int64
	ToolErrors        int64
	QueriesServed     int64
	CacheHits         int64
	CacheMisses       int64
	TicksSkipped      int64
	AIRequests        int64

	// Timings
	LastQueryTime    time.Duration
	AverageQueryTime time.Duration
	TotalQueryTime   time.Duration
	QueryCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementSnapshotsAppended(items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotsAppended++
	m.ItemsIngested += int64(items)
}

func (m *Metrics) IncrementToolCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolCalls++
}

func (m *Metrics) IncrementToolErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolErrors++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) AddTicksSkipped(n int) {
	if n == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TicksSkipped += int64(n)
}

func (m *Metrics) IncrementAIRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIRequests++
}

func (m *Metrics) RecordQueryTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueriesServed++
	m.LastQueryTime = duration
	m.TotalQueryTime += duration
	m.QueryCount++

	if m.QueryCount > 0 {
		m.AverageQueryTime = m.TotalQueryTime / time.Duration(m.QueryCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"snapshots_appended":    m.SnapshotsAppended,
		"items_ingested":        m.ItemsIngested,
		"tool_calls":            m.ToolCalls,
		"tool_errors":           m.ToolErrors,
		"queries_served":        m.QueriesServed,
		"cache_hits":            m.CacheHits,
		"cache_misses":          m.CacheMisses,
		"ticks_skipped":         m.TicksSkipped,
		"ai_requests":           m.AIRequests,
		"last_query_time_ms":    m.LastQueryTime.Milliseconds(),
		"average_query_time_ms": m.AverageQueryTime.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
