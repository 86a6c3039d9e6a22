package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on an embedded SQLite database. The id
// scheme matches the file backend: max(id)+1 computed inside the insert
// transaction, so the reuse-after-delete quirk is preserved here too.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// SQLiteOption tweaks SQLiteStore construction.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock overrides the time source, used by edit-lock tests.
func WithSQLiteClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) { s.now = now }
}

// OpenSQLiteStore opens (and migrates) the database at dbPath.
func OpenSQLiteStore(dbPath string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

const recordColumns = "id, record_id, user_id, amount, category, date, vendor, notes, attachments, created_at"

func (s *SQLiteStore) List(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM records ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := []core.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (core.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) Create(ctx context.Context, d Draft) (core.Record, error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM records").Scan(&rec.ID); err != nil {
		return core.Record{}, fmt.Errorf("next id: %w", err)
	}

	attachments, err := json.Marshal(rec.Attachments)
	if err != nil {
		return core.Record{}, fmt.Errorf("encode attachments: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.RecordID, rec.UserID, rec.Amount, rec.Category, rec.Date.String(),
		rec.Vendor, rec.Notes, string(attachments), rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit create: %w", err)
	}

	slog.InfoContext(ctx, "Record created", "id", rec.ID, "record_id", rec.RecordID, "category", rec.Category)
	return rec, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, p Patch) (core.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	prev, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	if err != nil {
		return core.Record{}, err
	}
	if core.EditLocked(prev.CreatedAt, s.now()) {
		return core.Record{}, ErrLocked
	}

	next := p.apply(prev)
	attachments, err := json.Marshal(next.Attachments)
	if err != nil {
		return core.Record{}, fmt.Errorf("encode attachments: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE records SET amount = ?, category = ?, date = ?, vendor = ?, notes = ?, attachments = ? WHERE id = ?",
		next.Amount, next.Category, next.Date.String(), next.Vendor, next.Notes, string(attachments), id)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Record updated", "id", id, "record_id", next.RecordID)
	return next, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (core.Record, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, 0, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	deleted, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, 0, ErrNotFound
	}
	if err != nil {
		return core.Record{}, 0, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
		return core.Record{}, 0, fmt.Errorf("delete record: %w", err)
	}
	var remaining int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&remaining); err != nil {
		return core.Record{}, 0, fmt.Errorf("count remaining: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, 0, fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Record deleted", "id", id, "record_id", deleted.RecordID, "remaining", remaining)
	return deleted, remaining, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec         core.Record
		date        string
		attachments string
		createdAt   string
	)
	err := row.Scan(&rec.ID, &rec.RecordID, &rec.UserID, &rec.Amount, &rec.Category,
		&date, &rec.Vendor, &rec.Notes, &attachments, &createdAt)
	if err != nil {
		return core.Record{}, err
	}

	if rec.Date, err = core.ParseDate(date); err != nil {
		return core.Record{}, fmt.Errorf("decode date: %w", err)
	}
	if err := json.Unmarshal([]byte(attachments), &rec.Attachments); err != nil {
		return core.Record{}, fmt.Errorf("decode attachments: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Record{}, fmt.Errorf("decode created_at: %w", err)
	}
	return rec, nil
}
