package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spendtrack/internal/core"
)

// FileStore keeps the ledger in memory and mirrors every mutation to a
// single JSON file. The whole collection is rewritten on each change;
// mutations are serialized behind a mutex so concurrent requests cannot
// lose writes to each other.
type FileStore struct {
	mu      sync.Mutex
	path    string
	records []core.Record
	now     func() time.Time
}

// FileOption tweaks FileStore construction.
type FileOption func(*FileStore)

// WithClock overrides the time source, used by edit-lock tests.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) { s.now = now }
}

// OpenFileStore loads the ledger from path, creating an empty file when
// none exists.
func OpenFileStore(path string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.records = []core.Record{}
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("initialize data file: %w", err)
		}
		slog.Info("No ledger file found, starting empty", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read data file: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.records); err != nil {
			return nil, fmt.Errorf("decode data file %s: %w", path, err)
		}
		slog.Info("Loaded ledger from file", "path", path, "count", len(s.records))
	}

	return s, nil
}

func (s *FileStore) List(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *FileStore) Get(_ context.Context, id int64) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.records[i], nil
	}
	return core.Record{}, ErrNotFound
}

func (s *FileStore) Create(ctx context.Context, d Draft) (core.Record, error) {
	now := s.now()
	rec := core.Record{
		RecordID:    core.NewRecordID(now),
		UserID:      core.DefaultUserID,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        d.Date,
		Vendor:      d.Vendor,
		Notes:       d.Notes,
		Attachments: d.Attachments,
		CreatedAt:   now,
	}
	if rec.Attachments == nil {
		rec.Attachments = []core.Attachment{}
	}
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextIDLocked()
	s.records = append(s.records, rec)
	if err := s.persistLocked(); err != nil {
		// Roll back the append; the create must not report success when
		// the file write failed.
		s.records = s.records[:len(s.records)-1]
		return core.Record{}, fmt.Errorf("persist create: %w", err)
	}

	slog.InfoContext(ctx, "Record created", "id", rec.ID, "record_id", rec.RecordID, "category", rec.Category)
	return rec, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, p Patch) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return core.Record{}, ErrNotFound
	}
	prev := s.records[i]
	if core.EditLocked(prev.CreatedAt, s.now()) {
		return core.Record{}, ErrLocked
	}

	s.records[i] = p.apply(prev)
	if err := s.persistLocked(); err != nil {
		s.records[i] = prev
		return core.Record{}, fmt.Errorf("persist update: %w", err)
	}

	slog.InfoContext(ctx, "Record updated", "id", id, "record_id", prev.RecordID)
	return s.records[i], nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) (core.Record, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return core.Record{}, 0, ErrNotFound
	}
	deleted := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)

	if err := s.persistLocked(); err != nil {
		// Restore at the original position so a failed flush leaves the
		// ledger untouched.
		s.records = append(s.records[:i], append([]core.Record{deleted}, s.records[i:]...)...)
		return core.Record{}, 0, fmt.Errorf("persist delete: %w", err)
	}

	slog.InfoContext(ctx, "Record deleted", "id", id, "record_id", deleted.RecordID, "remaining", len(s.records))
	return deleted, len(s.records), nil
}

func (s *FileStore) Close() error { return nil }

// nextIDLocked computes max(existing)+1, or 1 for an empty ledger. This
// deliberately mirrors the original ad hoc scheme: deleting the highest
// record makes its id available again on the next insert.
func (s *FileStore) nextIDLocked() int64 {
	var max int64
	for _, r := range s.records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

func (s *FileStore) indexLocked(id int64) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked rewrites the whole ledger file atomically via a sibling
// temp file and rename. Callers hold s.mu.
func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
