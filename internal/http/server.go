// Package http exposes the REST surface: ledger CRUD, server-side
// search, report aggregates, receipt uploads and OCR extraction.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendtrack/internal/cache"
	applog "spendtrack/internal/log"
	"spendtrack/internal/ocr"
	"spendtrack/internal/services"
	"spendtrack/internal/upload"
)

const (
	reportCacheSize = 128
	reportCacheTTL  = 5 * time.Minute

	// searchLimitMax caps the optional result limit on /api/spends/search.
	searchLimitMax = 1000

	maxMultipleUploads = 10
)

// Extractor is the slice of the OCR chain the server needs.
type Extractor interface {
	Extract(ctx context.Context, imagePath string) (ocr.Fields, error)
}

// Server holds the handler dependencies and builds the router.
type Server struct {
	expenses *services.ExpenseService
	receipts *upload.Saver
	scans    *upload.Saver
	ocr      Extractor

	ocrTimeout time.Duration

	// reports memoizes summary/categories responses between mutations.
	reports *cache.LRU[[]byte]

	limiter *rateLimiter
	logger  *slog.Logger
	ready   func() bool
}

// Options configures optional server behavior.
type Options struct {
	// OCR is the engine chain; nil disables /api/ocr/process.
	OCR        Extractor
	OCRTimeout time.Duration

	// Ready reports backend readiness for /readyz; nil means always ready.
	Ready func() bool
}

// NewServer wires the REST surface over the expense service and the two
// upload savers (receipts for attachments, scans for OCR input).
func NewServer(expenses *services.ExpenseService, receipts, scans *upload.Saver, opts Options) *Server {
	s := &Server{
		expenses:   expenses,
		receipts:   receipts,
		scans:      scans,
		ocr:        opts.OCR,
		ocrTimeout: opts.OCRTimeout,
		reports:    cache.New[[]byte](reportCacheSize, reportCacheTTL),
		limiter:    newRateLimiter(),
		logger:     applog.For(applog.ComponentHTTP),
		ready:      opts.Ready,
	}
	if s.ocrTimeout <= 0 {
		s.ocrTimeout = 30 * time.Second
	}
	return s
}

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(securityHeaders)
	r.Use(s.instrument)
	r.Use(s.rateLimit)

	r.Route("/api", func(r chi.Router) {
		r.Route("/spends", func(r chi.Router) {
			r.Get("/", s.handleListSpends)
			r.Post("/", s.handleCreateSpend)
			r.Post("/search", s.handleSearchSpends)
			r.Get("/{id}", s.handleGetSpend)
			r.Put("/{id}", s.handleUpdateSpend)
			r.Delete("/{id}", s.handleDeleteSpend)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", s.handleSummaryReport)
			r.Get("/categories", s.handleCategoryReport)
		})
		r.Post("/upload", s.handleUpload)
		r.Post("/upload/multiple", s.handleUploadMultiple)
		r.Post("/ocr/process", s.handleOCRProcess)
	})

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.receipts.Dir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Close stops background goroutines owned by the server.
func (s *Server) Close() {
	s.limiter.stop()
}

// invalidateReports drops every cached report. Called after each
// successful mutation so reports never serve stale aggregates.
func (s *Server) invalidateReports() {
	s.reports.Purge()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
