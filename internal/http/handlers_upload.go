package http

import (
	"mime/multipart"
	"net/http"

	"spendtrack/internal/upload"
)

// Form-field names the API accepts.
const (
	fieldReceipt  = "receipt"
	fieldReceipts = "receipts"
	fieldImage    = "image"
)

// multipartMemory caps the in-memory portion of a parsed form; larger
// parts spill to temp files that ParseMultipartForm cleans up.
const multipartMemory = 8 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart request", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[fieldReceipt]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "No file uploaded, expected field \"receipt\"", nil)
		return
	}

	stored, err := s.receipts.Save(files[0])
	if err != nil {
		respondMapped(w, err, "Failed to store upload")
		return
	}
	s.logger.Info("Stored receipt", "filename", stored.Filename, "size", stored.Size)
	respondSuccess(w, http.StatusCreated, map[string]any{
		"message": "File uploaded",
		"file":    stored,
	})
}

func (s *Server) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart request", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[fieldReceipts]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "No files uploaded, expected field \"receipts\"", nil)
		return
	}
	if len(files) > maxMultipleUploads {
		respondError(w, http.StatusBadRequest, "Too many files, at most 10 per request", nil)
		return
	}

	// Validate every file before storing any, so a bad file rejects the
	// whole batch without leaving partial state.
	for _, fh := range files {
		if err := s.receipts.Allowed(fh); err != nil {
			respondMapped(w, err, "Failed to store uploads")
			return
		}
	}

	stored := make([]upload.StoredFile, 0, len(files))
	for _, fh := range files {
		f, err := s.receipts.Save(fh)
		if err != nil {
			s.discardStored(stored)
			respondMapped(w, err, "Failed to store uploads")
			return
		}
		stored = append(stored, f)
	}

	s.logger.Info("Stored receipts", "count", len(stored))
	respondSuccess(w, http.StatusCreated, map[string]any{
		"message": "Files uploaded",
		"files":   stored,
		"count":   len(stored),
	})
}

func (s *Server) discardStored(stored []upload.StoredFile) {
	for _, f := range stored {
		if err := s.receipts.Remove(f.Filename); err != nil {
			s.logger.Warn("Failed to remove partial upload", "filename", f.Filename, "error", err)
		}
	}
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	files := form.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
