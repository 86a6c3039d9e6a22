package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/core"
	"spendtrack/internal/event"
	"spendtrack/internal/store"
)

type capturingPublisher struct {
	events []*event.RecordEvent
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, e *event.RecordEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func newService(t *testing.T, pub Publisher) *ExpenseService {
	t.Helper()
	fs, err := store.OpenFileStore(filepath.Join(t.TempDir(), "expenses.json"))
	require.NoError(t, err)
	return NewExpenseService(fs, pub)
}

func TestMutationsEmitEvents(t *testing.T) {
	pub := &capturingPublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	rec, err := svc.Create(ctx, store.Draft{Amount: 10, Category: "Food", Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)

	amount := 12.0
	_, err = svc.Update(ctx, rec.ID, store.Patch{Amount: &amount})
	require.NoError(t, err)

	_, _, err = svc.Delete(ctx, rec.ID)
	require.NoError(t, err)

	require.Len(t, pub.events, 3)
	assert.Equal(t, event.ActionCreated, pub.events[0].Action)
	assert.Equal(t, event.ActionUpdated, pub.events[1].Action)
	assert.Equal(t, event.ActionDeleted, pub.events[2].Action)
	assert.Equal(t, rec.RecordID, pub.events[0].RecordID)
	assert.Equal(t, 12.0, pub.events[1].Amount)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("broker down")}
	svc := newService(t, pub)

	rec, err := svc.Create(context.Background(), store.Draft{Amount: 10, Category: "Food", Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err, "ledger write succeeded, event failure must not surface")

	got, err := svc.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.RecordID, got.RecordID)
}

func TestFailedMutationEmitsNothing(t *testing.T) {
	pub := &capturingPublisher{}
	svc := newService(t, pub)

	_, err := svc.Create(context.Background(), store.Draft{Category: "Food"})
	require.Error(t, err)
	assert.Empty(t, pub.events)

	_, err = svc.Update(context.Background(), 99, store.Patch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, pub.events)
}

func TestNilPublisherIsFine(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.Create(context.Background(), store.Draft{Amount: 5, Category: "Food", Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)
}
