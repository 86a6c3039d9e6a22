package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/event"
)

func TestAuditWriterAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := NewAuditWriter(path)
	require.NoError(t, err)
	loggedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return loggedAt }

	ctx := context.Background()
	require.NoError(t, w.Handle(ctx, event.NewRecordEvent(event.ActionCreated, 1, "EXP-A-0001", 12.5, "Food")))
	require.NoError(t, w.Handle(ctx, event.NewRecordEvent(event.ActionDeleted, 1, "EXP-A-0001", 12.5, "Food")))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []auditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e auditEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, entries, 2)
	assert.Equal(t, event.ActionCreated, entries[0].Action)
	assert.Equal(t, event.ActionDeleted, entries[1].Action)
	assert.Equal(t, "EXP-A-0001", entries[0].RecordID)
	assert.Equal(t, 12.5, entries[0].Amount)
	assert.True(t, entries[0].LoggedAt.Equal(loggedAt))
}

func TestAuditWriterCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "audit.log")
	w, err := NewAuditWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Handle(context.Background(), event.NewRecordEvent(event.ActionUpdated, 2, "EXP-B-0002", 3.0, "Transport")))
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAuditWriterAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	for i := 0; i < 2; i++ {
		w, err := NewAuditWriter(path)
		require.NoError(t, err)
		require.NoError(t, w.Handle(context.Background(), event.NewRecordEvent(event.ActionCreated, int64(i), "EXP-C-0003", 1.0, "Other")))
		require.NoError(t, w.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
