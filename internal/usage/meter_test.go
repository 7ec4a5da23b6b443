package usage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCost(t *testing.T) {
	tests := []struct {
		model      string
		prompt     int
		completion int
		want       float64
	}{
		{"gpt-4o-mini", 1_000_000, 0, 0.15},
		{"gpt-4o-mini", 0, 1_000_000, 0.60},
		{"gpt-4", 1_000_000, 1_000_000, 90.00},
		{"gpt-4o-mini", 1000, 500, 0.00045},
		{"some-future-model", 1_000_000, 0, 0.15}, // unknown model -> default pricing
		{"gpt-4o-mini", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d_%d", tt.model, tt.prompt, tt.completion), func(t *testing.T) {
			assert.InDelta(t, tt.want, Cost(tt.model, tt.prompt, tt.completion), 1e-9)
		})
	}
}

func TestRecordRingBound(t *testing.T) {
	m := NewMeter(nil)
	for i := 0; i < 150; i++ {
		m.Record("gpt-4o-mini", i, 0, "/api/v1/extract", "test")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.entries, Capacity)
	// most recent 100 in arrival order: prompt tokens 50..149
	assert.Equal(t, 50, m.entries[0].PromptTokens)
	assert.Equal(t, 149, m.entries[Capacity-1].PromptTokens)
}

func TestRecordEntry(t *testing.T) {
	m := NewMeter(nil)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	e := m.Record("gpt-4o-mini", 1000, 500, "", "")
	assert.Equal(t, fixed, e.Timestamp)
	assert.Equal(t, 1500, e.TotalTokens)
	assert.Equal(t, 0.00045, e.CostUSD)
	assert.Equal(t, "unknown", e.Endpoint)
	assert.Equal(t, "unknown", e.UserAction)
}

func TestParsePeriod(t *testing.T) {
	for period, want := range map[string]time.Duration{
		"1h": time.Hour, "24h": 24 * time.Hour,
		"7d": 7 * 24 * time.Hour, "30d": 30 * 24 * time.Hour,
	} {
		d, ok := ParsePeriod(period)
		assert.True(t, ok, period)
		assert.Equal(t, want, d, period)
	}

	d, ok := ParsePeriod("yesterday")
	assert.False(t, ok)
	assert.Equal(t, 24*time.Hour, d)
}

func TestQueryWindow(t *testing.T) {
	m := NewMeter(nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// two hours ago: outside the 1h window, inside 24h
	m.now = func() time.Time { return now.Add(-2 * time.Hour) }
	m.Record("gpt-4o-mini", 1000, 0, "/api/v1/extract", "a")

	// ten minutes ago: inside both
	m.now = func() time.Time { return now.Add(-10 * time.Minute) }
	m.Record("gpt-4", 1000, 0, "/api/v1/usage", "b")

	m.now = func() time.Time { return now }

	t.Run("1h window", func(t *testing.T) {
		stats := m.Query("1h")
		assert.Equal(t, 1, stats.TotalRequests)
		assert.Equal(t, 1000, stats.TotalTokens)
		assert.InDelta(t, 0.03, stats.TotalCostUSD, 1e-9)
		assert.InDelta(t, 4.5, stats.TotalCostJPY, 1e-9)
		assert.Len(t, stats.ByModel, 1)
		assert.Contains(t, stats.ByModel, "gpt-4")
	})

	t.Run("24h window sees both", func(t *testing.T) {
		stats := m.Query("24h")
		assert.Equal(t, 2, stats.TotalRequests)
		assert.Equal(t, 2000, stats.TotalTokens)
		assert.Len(t, stats.ByModel, 2)
		assert.Len(t, stats.ByEndpoint, 2)
		assert.Len(t, stats.RecentLogs, 2)
	})

	t.Run("recent logs capped", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			m.Record("gpt-4o-mini", 1, 0, "/api/v1/extract", "c")
		}
		stats := m.Query("24h")
		assert.Len(t, stats.RecentLogs, 10)
	})
}
