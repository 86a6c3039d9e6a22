// Package worker turns the record change feed into an append-only
// audit log, one JSON line per event.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spendtrack/internal/event"
	applog "spendtrack/internal/log"
)

// auditEntry is the on-disk line format. The consumer timestamp sits
// next to the event's own so replay lag is visible.
type auditEntry struct {
	Action     event.Action `json:"action"`
	ID         int64        `json:"id"`
	RecordID   string       `json:"recordId"`
	Amount     float64      `json:"amount"`
	Category   string       `json:"category"`
	OccurredAt time.Time    `json:"occurredAt"`
	LoggedAt   time.Time    `json:"loggedAt"`
}

// AuditWriter appends record events to a log file.
type AuditWriter struct {
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditWriter opens (or creates) the audit log in append mode.
func NewAuditWriter(path string) (*AuditWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditWriter{
		file:   file,
		logger: applog.For(applog.ComponentWorker),
		now:    time.Now,
	}, nil
}

// Handle records one event. It is the handler passed to event.Consume.
func (w *AuditWriter) Handle(ctx context.Context, e *event.RecordEvent) error {
	entry := auditEntry{
		Action:     e.Action,
		ID:         e.ID,
		RecordID:   e.RecordID,
		Amount:     e.Amount,
		Category:   e.Category,
		OccurredAt: e.OccurredAt,
		LoggedAt:   w.now(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	w.logger.Info("Audited record event", "action", e.Action, "id", e.ID, "record_id", e.RecordID)
	return nil
}

// Close flushes and closes the underlying file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
