// Package store owns the authoritative expense ledger. Two backends
// implement the same contract: a JSON file mirror of an in-memory slice
// and an embedded SQLite database.
package store

import (
	"context"
	"errors"

	"spendtrack/internal/core"
)

var (
	// ErrNotFound signals an unknown record id.
	ErrNotFound = errors.New("record not found")

	// ErrLocked signals an update denied by the 48-hour edit lock.
	ErrLocked = errors.New("record locked for editing")
)

// Draft carries the caller-supplied fields for a new record. The store
// assigns id, recordId, userId and createdAt itself.
type Draft struct {
	Amount      float64
	Category    string
	Date        core.Date
	Vendor      string
	Notes       string
	Attachments []core.Attachment
}

// Patch carries a partial update. Nil fields are left untouched; id,
// recordId, userId and createdAt can never be changed through a patch.
type Patch struct {
	Amount      *float64
	Category    *string
	Date        *core.Date
	Vendor      *string
	Notes       *string
	Attachments *[]core.Attachment
}

// Store is the record store contract. All mutating operations persist
// synchronously and are safe for concurrent use.
type Store interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]core.Record, error)

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id int64) (core.Record, error)

	// Create validates the draft, assigns identifiers and persists the
	// new record. The id is max(existing)+1, or 1 for an empty store;
	// deleting the highest record therefore frees its id for reuse.
	Create(ctx context.Context, d Draft) (core.Record, error)

	// Update merges the patch over an existing record, subject to the
	// edit-lock policy. Returns ErrNotFound or ErrLocked accordingly.
	Update(ctx context.Context, id int64, p Patch) (core.Record, error)

	// Delete hard-deletes a record and returns it together with the
	// remaining record count. A failed flush rolls the removal back.
	Delete(ctx context.Context, id int64) (core.Record, int, error)

	Close() error
}

func (p Patch) apply(r core.Record) core.Record {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Vendor != nil {
		r.Vendor = *p.Vendor
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Attachments != nil {
		r.Attachments = *p.Attachments
	}
	return r
}
