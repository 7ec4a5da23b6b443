package usage

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Capacity bounds the in-memory retention window: after more than Capacity
// calls the oldest entries are evicted.
const Capacity = 100

// jpyPerUSD is the fixed conversion rate used for the store-facing JPY
// figure. Approximate by design.
const jpyPerUSD = 150.0

// recentLimit is how many raw entries a query returns alongside aggregates.
const recentLimit = 10

// LogEntry is one AI call's cost/token accounting line.
type LogEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CostUSD          float64   `json:"cost_usd"`
	Endpoint         string    `json:"endpoint"`
	UserAction       string    `json:"user_action"`
}

// Bucket is a grouped aggregate over a query window.
type Bucket struct {
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
	CostUSD  float64 `json:"cost_usd"`
}

// Stats is the aggregate answer to a period query.
type Stats struct {
	TotalRequests int               `json:"total_requests"`
	TotalTokens   int               `json:"total_tokens"`
	TotalCostUSD  float64           `json:"total_cost_usd"`
	TotalCostJPY  float64           `json:"total_cost_jpy"`
	ByModel       map[string]Bucket `json:"by_model"`
	ByEndpoint    map[string]Bucket `json:"by_endpoint"`
	RecentLogs    []LogEntry        `json:"recent_logs"`
}

// Sink is an optional durable mirror for usage entries (e.g. the embedded
// SQLite store). Append failures never fail the request being metered.
type Sink interface {
	Append(ctx context.Context, e LogEntry) error
	Close() error
}

// Meter is the process-wide usage accountant: a mutex-guarded bounded ring
// of the most recent Capacity entries, plus query-time aggregation.
type Meter struct {
	mu      sync.Mutex
	entries []LogEntry

	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewMeter(logger *slog.Logger) *Meter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Meter{
		entries: make([]LogEntry, 0, Capacity),
		logger:  logger,
		now:     time.Now,
	}
}

// AttachSink mirrors every subsequent entry into a durable store.
func (m *Meter) AttachSink(s Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = s
}

// Record appends one accounting entry and returns it. Oldest entries are
// evicted once the ring exceeds Capacity.
func (m *Meter) Record(model string, promptTokens, completionTokens int, endpoint, userAction string) LogEntry {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if userAction == "" {
		userAction = "unknown"
	}
	entry := LogEntry{
		Timestamp:        m.now().UTC(),
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		CostUSD:          Cost(model, promptTokens, completionTokens),
		Endpoint:         endpoint,
		UserAction:       userAction,
	}

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	if len(m.entries) > Capacity {
		m.entries = m.entries[len(m.entries)-Capacity:]
	}
	sink := m.sink
	m.mu.Unlock()

	if sink != nil {
		if err := sink.Append(context.Background(), entry); err != nil {
			m.logger.Warn("usage.sink.append_failed", "error", err)
		}
	}

	m.logger.Info("usage.recorded",
		"model", model,
		"total_tokens", entry.TotalTokens,
		"cost_usd", entry.CostUSD,
		"endpoint", endpoint,
	)
	return entry
}

// ParsePeriod maps a query period to its lookback duration. Unknown periods
// fall back to 24h.
func ParsePeriod(period string) (time.Duration, bool) {
	switch period {
	case "1h":
		return time.Hour, true
	case "24h":
		return 24 * time.Hour, true
	case "7d":
		return 7 * 24 * time.Hour, true
	case "30d":
		return 30 * 24 * time.Hour, true
	default:
		return 24 * time.Hour, false
	}
}

// Query aggregates entries whose timestamp falls inside the period window.
func (m *Meter) Query(period string) Stats {
	window, _ := ParsePeriod(period)
	cutoff := m.now().UTC().Add(-window)

	m.mu.Lock()
	var filtered []LogEntry
	for _, e := range m.entries {
		if !e.Timestamp.Before(cutoff) {
			filtered = append(filtered, e)
		}
	}
	m.mu.Unlock()

	stats := Stats{
		ByModel:    make(map[string]Bucket),
		ByEndpoint: make(map[string]Bucket),
	}
	for _, e := range filtered {
		stats.TotalRequests++
		stats.TotalTokens += e.TotalTokens
		stats.TotalCostUSD += e.CostUSD

		bm := stats.ByModel[e.Model]
		bm.Requests++
		bm.Tokens += e.TotalTokens
		bm.CostUSD += e.CostUSD
		stats.ByModel[e.Model] = bm

		be := stats.ByEndpoint[e.Endpoint]
		be.Requests++
		be.Tokens += e.TotalTokens
		be.CostUSD += e.CostUSD
		stats.ByEndpoint[e.Endpoint] = be
	}
	stats.TotalCostUSD = math.Round(stats.TotalCostUSD*1e6) / 1e6
	stats.TotalCostJPY = math.Round(stats.TotalCostUSD*jpyPerUSD*100) / 100

	if n := len(filtered); n > recentLimit {
		stats.RecentLogs = filtered[n-recentLimit:]
	} else {
		stats.RecentLogs = filtered
	}
	return stats
}
