package performance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbocharov/trendtrader/internal/domain"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder(filepath.Join(t.TempDir(), "performance.csv"), 4)
	require.NoError(t, err)
	return r
}

func TestNewRecorder(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := NewRecorder("", 4)
		assert.Error(t, err)
	})

	t.Run("precision out of range", func(t *testing.T) {
		_, err := NewRecorder("performance.csv", 9)
		assert.Error(t, err)
	})
}

func TestDailyReturn(t *testing.T) {
	r := newTestRecorder(t)

	t.Run("rounded percent", func(t *testing.T) {
		percent, err := r.DailyReturn(domain.EquitySnapshot{
			Equity:     decimal.RequireFromString("10123.45"),
			LastEquity: decimal.RequireFromString("10000.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, "1.2345", percent.String())
	})

	t.Run("negative day", func(t *testing.T) {
		percent, err := r.DailyReturn(domain.EquitySnapshot{
			Equity:     decimal.RequireFromString("9900"),
			LastEquity: decimal.RequireFromString("10000"),
		})
		require.NoError(t, err)
		assert.Equal(t, "-1", percent.String())
	})

	t.Run("zero prior equity", func(t *testing.T) {
		_, err := r.DailyReturn(domain.EquitySnapshot{
			Equity:     decimal.RequireFromString("100"),
			LastEquity: decimal.Zero,
		})
		assert.Error(t, err)
	})
}

func TestAppendAndEntries(t *testing.T) {
	r := newTestRecorder(t)

	days := []struct {
		date    time.Time
		percent string
	}{
		{time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), "1.2345"},
		{time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC), "-0.5000"},
		{time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC), "0.0000"},
	}

	for _, d := range days {
		require.NoError(t, r.Append(d.date, decimal.RequireFromString(d.percent)))
	}

	raw, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	content := string(raw)
	assert.Equal(t, 2, strings.Count(content, "\n"), "entries after the first are newline-prefixed")
	assert.False(t, strings.HasSuffix(content, "\n"), "log must not end with a trailing newline")

	lines := strings.Split(content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-03-01,1.2345", lines[0])
	assert.Equal(t, "2024-03-04,-0.5000", lines[1])
	assert.Equal(t, "2024-03-05,0.0000", lines[2])

	entries, err := r.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, days[i].date.Format("2006-01-02"), entry.Date.Format("2006-01-02"))
		assert.True(t, entry.Percent.Equal(decimal.RequireFromString(days[i].percent)))
	}
}

func TestEntriesMissingFile(t *testing.T) {
	r := newTestRecorder(t)
	entries, err := r.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
