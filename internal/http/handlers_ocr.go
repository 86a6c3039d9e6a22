package http

import (
	"context"
	"net/http"
	"path/filepath"
)

// handleOCRProcess stores the uploaded image in the scratch area, runs
// the engine chain over it and always deletes the image afterwards.
func (s *Server) handleOCRProcess(w http.ResponseWriter, r *http.Request) {
	if s.ocr == nil {
		respondError(w, http.StatusServiceUnavailable, "OCR is not configured", nil)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart request", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh := firstFile(r.MultipartForm, fieldImage)
	if fh == nil {
		respondError(w, http.StatusBadRequest, "No image uploaded, expected field \"image\"", nil)
		return
	}

	stored, err := s.scans.Save(fh)
	if err != nil {
		respondMapped(w, err, "Failed to store image")
		return
	}
	defer func() {
		if err := s.scans.Remove(stored.Filename); err != nil {
			s.logger.Warn("Failed to remove scan image", "filename", stored.Filename, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(r.Context(), s.ocrTimeout)
	defer cancel()

	fields, err := s.ocr.Extract(ctx, filepath.Join(s.scans.Dir(), stored.Filename))
	if err != nil {
		respondMapped(w, err, "OCR extraction failed")
		return
	}

	s.logger.Info("Extracted receipt fields",
		"vendor", fields.Vendor, "amount", fields.Amount, "category", fields.Category)
	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "Receipt processed",
		"data":    fields,
	})
}
