package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendtrack/internal/core"
	"spendtrack/internal/ocr"
	"spendtrack/internal/store"
	"spendtrack/internal/upload"
)

// envelope is the uniform error body. Success bodies carry
// "success": true plus endpoint-specific fields.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := envelope{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

// respondMapped translates domain errors onto the REST error taxonomy.
func respondMapped(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Spend record not found", err)
	case errors.Is(err, store.ErrLocked):
		respondError(w, http.StatusForbidden, "Record can no longer be edited", err)
	case errors.Is(err, core.ErrMissingAmount),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrMissingDate):
		respondError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, upload.ErrUnsupportedType):
		respondError(w, http.StatusUnsupportedMediaType, "Unsupported file type", err)
	case errors.Is(err, upload.ErrTooLarge):
		respondError(w, http.StatusBadRequest, "File too large", err)
	case errors.Is(err, ocr.ErrExtractFailed):
		respondError(w, http.StatusInternalServerError, "OCR extraction failed", err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}
