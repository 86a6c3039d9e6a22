package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

const recentSpendCount = 5

// handleSummaryReport aggregates the records matching the optional
// from/to date bounds and category. Bounds are inclusive; category is
// case-insensitive and "all" means no category filter.
func (s *Server) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")
	to := q.Get("to")
	category := q.Get("category")

	key := "summary|" + from + "|" + to + "|" + strings.ToLower(category)
	if s.serveCachedReport(w, key) {
		return
	}

	records, err := s.expenses.List(r.Context())
	if err != nil {
		respondMapped(w, err, "Failed to load spend records")
		return
	}

	matched := filterForSummary(records, from, to, category)
	body := map[string]any{
		"success":   true,
		"summary":   query.Summarize(matched),
		"breakdown": query.CategoryBreakdown(matched, 0),
		"recent":    query.RecentByDate(matched, recentSpendCount),
	}
	s.writeCachedReport(w, key, body)
}

// handleCategoryReport reports per-category stats over the whole ledger,
// each with its share of the grand total.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	const key = "categories"
	if s.serveCachedReport(w, key) {
		return
	}

	records, err := s.expenses.List(r.Context())
	if err != nil {
		respondMapped(w, err, "Failed to load spend records")
		return
	}

	body := map[string]any{
		"success":    true,
		"data":       query.CategoryBreakdown(records, query.TotalAmount(records)),
		"totalSpend": core.Round2(query.TotalAmount(records)),
	}
	s.writeCachedReport(w, key, body)
}

// filterForSummary keeps records inside the inclusive date bounds and
// matching the category. Dates compare as "YYYY-MM-DD" strings, which
// orders the same as the dates themselves.
func filterForSummary(records []core.Record, from, to, category string) []core.Record {
	matchCategory := category != "" && !strings.EqualFold(category, "all")
	out := make([]core.Record, 0, len(records))
	for _, rec := range records {
		day := rec.Date.String()
		if from != "" && day < from {
			continue
		}
		if to != "" && day > to {
			continue
		}
		if matchCategory && !strings.EqualFold(rec.Category, category) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *Server) serveCachedReport(w http.ResponseWriter, key string) bool {
	cached, ok := s.reports.Get(key)
	if !ok {
		reportCacheHits.WithLabelValues("miss").Inc()
		return false
	}
	reportCacheHits.WithLabelValues("hit").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(cached)
	return true
}

func (s *Server) writeCachedReport(w http.ResponseWriter, key string, body map[string]any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode report", err)
		return
	}
	s.reports.Set(key, buf.Bytes())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
