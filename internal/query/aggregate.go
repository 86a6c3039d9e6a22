package query

import (
	"sort"

	"spendtrack/internal/core"
)

// Summary is the headline aggregate over a record set.
type Summary struct {
	Count         int     `json:"totalSpends"`
	TotalAmount   float64 `json:"totalAmount"`
	AverageAmount float64 `json:"averageAmount"`
}

// CategoryStat aggregates one category's records. Percentage is relative
// to the grand total supplied to CategoryBreakdown.
type CategoryStat struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
	Average    float64 `json:"average"`
	Percentage float64 `json:"percentage,omitempty"`
}

// TotalAmount sums the unrounded amounts of a record set.
func TotalAmount(records []core.Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// Summarize computes count, total and average, rounded to two decimals.
// An empty set yields a zero average rather than a division error.
func Summarize(records []core.Record) Summary {
	total := TotalAmount(records)
	avg := 0.0
	if len(records) > 0 {
		avg = total / float64(len(records))
	}
	return Summary{
		Count:         len(records),
		TotalAmount:   core.Round2(total),
		AverageAmount: core.Round2(avg),
	}
}

// CategoryBreakdown aggregates records per category, sorted by total
// descending. grandTotal sets the percentage basis; pass zero to skip
// percentages (summary-style consumers).
func CategoryBreakdown(records []core.Record, grandTotal float64) []CategoryStat {
	byCat := map[string]*CategoryStat{}
	order := []string{}
	for _, r := range records {
		stat, ok := byCat[r.Category]
		if !ok {
			stat = &CategoryStat{Category: r.Category}
			byCat[r.Category] = stat
			order = append(order, r.Category)
		}
		stat.Count++
		stat.Total += r.Amount
	}

	out := make([]CategoryStat, 0, len(order))
	for _, cat := range order {
		stat := *byCat[cat]
		stat.Average = core.Round2(stat.Total / float64(stat.Count))
		if grandTotal > 0 {
			stat.Percentage = core.Round1(stat.Total / grandTotal * 100)
		}
		stat.Total = core.Round2(stat.Total)
		out = append(out, stat)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// RecentByDate returns the n most-recently-dated records. Ties keep their
// original relative order; n <= 0 means no cap.
func RecentByDate(records []core.Record, n int) []core.Record {
	out := make([]core.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
