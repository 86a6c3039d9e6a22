package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendtrack/internal/core"
)

func newTestSQLite(t *testing.T, opts ...SQLiteOption) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "spendtrack.db"), opts...)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteCRUDRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, Draft{
		Amount:   42.50,
		Category: "Office",
		Date:     core.NewDate(2024, 2, 10),
		Vendor:   "Staples",
		Notes:    "paper",
		Attachments: []core.Attachment{
			{Filename: "r.png", OriginalName: "receipt.png", Path: "/uploads/r.png"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != 1 {
		t.Fatalf("first id = %d", rec.ID)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RecordID != rec.RecordID || got.Amount != 42.50 || !got.Date.Equal(rec.Date) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Filename != "r.png" {
		t.Fatalf("attachments lost: %+v", got.Attachments)
	}

	vendor := "Office Depot"
	updated, err := s.Update(ctx, rec.ID, Patch{Vendor: &vendor})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Vendor != vendor || updated.RecordID != rec.RecordID {
		t.Fatalf("update mismatch: %+v", updated)
	}

	deleted, remaining, err := s.Delete(ctx, rec.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != rec.ID || remaining != 0 {
		t.Fatalf("delete returned id=%d remaining=%d", deleted.ID, remaining)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteIDReuseQuirk(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.Create(ctx, Draft{Amount: 10, Category: "Food", Date: core.NewDate(2024, 3, 1+i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, _, err := s.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rec, err := s.Create(ctx, Draft{Amount: 10, Category: "Food", Date: core.NewDate(2024, 3, 9)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != 2 {
		t.Fatalf("id = %d, want 2 (max+1 quirk preserved)", rec.ID)
	}
}

func TestSQLiteEditLock(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	s := newTestSQLite(t, WithSQLiteClock(func() time.Time { return clock() }))
	ctx := context.Background()

	rec, err := s.Create(ctx, Draft{Amount: 10, Category: "Food", Date: core.NewDate(2024, 3, 1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock = func() time.Time { return now.Add(49 * time.Hour) }
	amount := 15.0
	if _, err := s.Update(ctx, rec.ID, Patch{Amount: &amount}); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, _, err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("locked record must still delete: %v", err)
	}
}
