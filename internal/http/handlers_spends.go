package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
	"spendtrack/internal/store"
)

// spendRequest is the wire shape for create and update. Pointers tell a
// missing field apart from an explicit zero on update.
type spendRequest struct {
	Amount      *float64           `json:"amount"`
	Category    *string            `json:"category"`
	Date        *string            `json:"date"`
	Vendor      *string            `json:"vendor"`
	Notes       *string            `json:"notes"`
	Attachments *[]core.Attachment `json:"attachments"`
}

func (s *Server) handleListSpends(w http.ResponseWriter, r *http.Request) {
	records, err := s.expenses.List(r.Context())
	if err != nil {
		respondMapped(w, err, "Failed to load spend records")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]any{
		"data":  records,
		"count": len(records),
	})
}

func (s *Server) handleGetSpend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	record, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		respondMapped(w, err, "Failed to load spend record")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]any{"data": record})
}

func (s *Server) handleCreateSpend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft := store.Draft{}
	if req.Amount != nil {
		draft.Amount = *req.Amount
	}
	if req.Category != nil {
		draft.Category = *req.Category
	}
	if req.Date != nil && *req.Date != "" {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		draft.Date = date
	}
	if req.Vendor != nil {
		draft.Vendor = *req.Vendor
	}
	if req.Notes != nil {
		draft.Notes = *req.Notes
	}
	if req.Attachments != nil {
		draft.Attachments = *req.Attachments
	}

	record, err := s.expenses.Create(r.Context(), draft)
	if err != nil {
		respondMapped(w, err, "Failed to create spend record")
		return
	}
	s.invalidateReports()
	respondSuccess(w, http.StatusCreated, map[string]any{
		"message": "Spend record created",
		"data":    record,
	})
}

func (s *Server) handleUpdateSpend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := store.Patch{
		Amount:      req.Amount,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Notes:       req.Notes,
		Attachments: req.Attachments,
	}
	if req.Date != nil && *req.Date != "" {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		patch.Date = &date
	}

	record, err := s.expenses.Update(r.Context(), id, patch)
	if err != nil {
		respondMapped(w, err, "Failed to update spend record")
		return
	}
	s.invalidateReports()
	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "Spend record updated",
		"data":    record,
	})
}

func (s *Server) handleDeleteSpend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	record, remaining, err := s.expenses.Delete(r.Context(), id)
	if err != nil {
		respondMapped(w, err, "Failed to delete spend record")
		return
	}
	s.invalidateReports()
	respondSuccess(w, http.StatusOK, map[string]any{
		"message":   "Spend record deleted",
		"data":      record,
		"remaining": remaining,
	})
}

func (s *Server) handleSearchSpends(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	filter, err := query.Parse(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid search filter", err)
		return
	}

	// The limit rides alongside the filter in the same body.
	var limitField struct {
		Limit int `json:"limit"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &limitField); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid search filter", err)
			return
		}
	}
	limit := limitField.Limit
	if limit < 0 || limit > searchLimitMax {
		limit = searchLimitMax
	}

	records, err := s.expenses.List(r.Context())
	if err != nil {
		respondMapped(w, err, "Failed to load spend records")
		return
	}

	matched := filter.Apply(records)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	respondSuccess(w, http.StatusOK, map[string]any{
		"data":  matched,
		"count": len(matched),
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record id", err)
		return 0, false
	}
	return id, true
}
