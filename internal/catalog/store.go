package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded encode.
type Entry struct {
	ID        int64
	SessionID string
	Input     string
	Artifact  string
	Frames    int
	Skipped   int
	Width     int
	Height    int
	SourceFPS float64
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Store persists encode history.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	defaultListLimit = 20
)

const entryColumns = "id, session_id, input_path, artifact_path, frames, skipped_frames, width, height, source_fps, elapsed_ms, created_at"

// Open creates or connects to the catalog database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts entry and returns it with ID and CreatedAt set.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if strings.TrimSpace(entry.Artifact) == "" {
		return Entry{}, errors.New("record encode: artifact path is empty")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO encodes (
                session_id, input_path, artifact_path, frames, skipped_frames,
                width, height, source_fps, elapsed_ms, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.SessionID,
			entry.Input,
			entry.Artifact,
			entry.Frames,
			entry.Skipped,
			entry.Width,
			entry.Height,
			nullableFloat(entry.SourceFPS),
			entry.Elapsed.Milliseconds(),
			entry.CreatedAt.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return Entry{}, fmt.Errorf("record encode: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// List returns the most recent entries, newest first. A non-positive limit
// falls back to 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM encodes ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list encodes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encode: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Latest returns the newest entry for an artifact path.
func (s *Store) Latest(ctx context.Context, artifactPath string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM encodes WHERE artifact_path = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		artifactPath)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("latest encode: %w", err)
	}
	return entry, true, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry      Entry
		sourceFPS  sql.NullFloat64
		elapsedMS  int64
		createdRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Input,
		&entry.Artifact,
		&entry.Frames,
		&entry.Skipped,
		&entry.Width,
		&entry.Height,
		&sourceFPS,
		&elapsedMS,
		&createdRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.SourceFPS = sourceFPS.Float64
	entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func nullableFloat(value float64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
