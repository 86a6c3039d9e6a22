package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/core"
)

func TestSummarizeScenario(t *testing.T) {
	recs := sampleRecords() // 10 + 20 + 30 across Food/Food/Transport

	s := Summarize(recs)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 60.00, s.TotalAmount)
	assert.Equal(t, 20.00, s.AverageAmount)
}

func TestSummarizeEmptySet(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.TotalAmount)
	assert.Equal(t, 0.0, s.AverageAmount, "empty set must not divide by zero")
}

func TestCategoryBreakdownScenario(t *testing.T) {
	recs := sampleRecords()
	stats := CategoryBreakdown(recs, TotalAmount(recs))
	require.Len(t, stats, 2)

	byName := map[string]CategoryStat{}
	for _, s := range stats {
		byName[s.Category] = s
	}

	food := byName["Food"]
	assert.Equal(t, 2, food.Count)
	assert.Equal(t, 30.00, food.Total)
	assert.Equal(t, 15.00, food.Average)
	assert.Equal(t, 50.0, food.Percentage)

	transport := byName["Transport"]
	assert.Equal(t, 1, transport.Count)
	assert.Equal(t, 30.00, transport.Total)
	assert.Equal(t, 50.0, transport.Percentage)

	var pctSum float64
	for _, s := range stats {
		pctSum += s.Percentage
	}
	assert.InDelta(t, 100.0, pctSum, 0.2, "percentages sum to 100 within rounding tolerance")
}

func TestCategoryBreakdownSortedByTotalDesc(t *testing.T) {
	recs := []core.Record{
		{Amount: 5, Category: "A"},
		{Amount: 50, Category: "B"},
		{Amount: 20, Category: "C"},
	}
	stats := CategoryBreakdown(recs, TotalAmount(recs))
	require.Len(t, stats, 3)
	assert.Equal(t, "B", stats[0].Category)
	assert.Equal(t, "C", stats[1].Category)
	assert.Equal(t, "A", stats[2].Category)
}

func TestRecentByDateCap(t *testing.T) {
	recs := sampleRecords()
	recent := RecentByDate(recs, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].ID, "most recently dated first")
	assert.Equal(t, int64(2), recent[1].ID)

	all := RecentByDate(recs, 0)
	assert.Len(t, all, 3, "n <= 0 keeps everything")
}
