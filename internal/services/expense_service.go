// Package services orchestrates ledger mutations with the optional
// change-event feed.
package services

import (
	"context"
	"log/slog"

	"spendtrack/internal/core"
	"spendtrack/internal/event"
	"spendtrack/internal/store"
)

// Publisher is the slice of the event client the service needs.
type Publisher interface {
	Publish(ctx context.Context, e *event.RecordEvent) error
}

// ExpenseService fronts the record store. Every successful mutation
// emits a change event best-effort: a publish failure is logged and the
// request still succeeds, because the ledger is the source of truth.
type ExpenseService struct {
	store  store.Store
	events Publisher
}

// NewExpenseService wires a store with an optional publisher (nil
// disables events).
func NewExpenseService(s store.Store, events Publisher) *ExpenseService {
	return &ExpenseService{store: s, events: events}
}

func (s *ExpenseService) List(ctx context.Context) ([]core.Record, error) {
	return s.store.List(ctx)
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *ExpenseService) Create(ctx context.Context, d store.Draft) (core.Record, error) {
	rec, err := s.store.Create(ctx, d)
	if err != nil {
		return core.Record{}, err
	}
	s.emit(ctx, event.ActionCreated, rec)
	return rec, nil
}

func (s *ExpenseService) Update(ctx context.Context, id int64, p store.Patch) (core.Record, error) {
	rec, err := s.store.Update(ctx, id, p)
	if err != nil {
		return core.Record{}, err
	}
	s.emit(ctx, event.ActionUpdated, rec)
	return rec, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) (core.Record, int, error) {
	rec, remaining, err := s.store.Delete(ctx, id)
	if err != nil {
		return core.Record{}, 0, err
	}
	s.emit(ctx, event.ActionDeleted, rec)
	return rec, remaining, nil
}

func (s *ExpenseService) emit(ctx context.Context, action event.Action, rec core.Record) {
	if s.events == nil {
		return
	}
	e := event.NewRecordEvent(action, rec.ID, rec.RecordID, rec.Amount, rec.Category)
	if err := s.events.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"action", action, "id", rec.ID, "error", err)
	}
}

// Close releases the underlying store.
func (s *ExpenseService) Close() error {
	return s.store.Close()
}
