package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fileconv/internal/config"
	"fileconv/internal/services"
)

const outcomeOK = services.OutcomeOK

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Remove deletes the history database and its WAL side files.
func Remove(cfg *config.Config) error {
	base := cfg.HistoryPath()
	for _, p := range []string{base, base + "-wal", base + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertUpload records an upload attempt.
func (s *Store) InsertUpload(ctx context.Context, u Upload) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO uploads (
            source, source_path, size_bytes, handle, category,
            outcome, error_message, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(u.Source),
		nullableString(u.SourcePath),
		u.SizeBytes,
		nullableString(u.Handle),
		nullableString(u.Category),
		u.Outcome,
		nullableString(u.ErrorMessage),
		formatTime(u.StartedAt),
		u.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert upload: %w", err)
	}
	return res.LastInsertId()
}

// InsertConversion records a conversion attempt.
func (s *Store) InsertConversion(ctx context.Context, c Conversion) (int64, error) {
	if strings.TrimSpace(c.RequestID) == "" {
		return 0, errors.New("insert conversion: request id is required")
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO conversions (
            request_id, handle, category, target_format, compress,
            output_filename, download_url, outcome, error_message,
            ticks, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RequestID,
		c.Handle,
		nullableString(c.Category),
		c.TargetFormat,
		boolToInt(c.Compress),
		nullableString(c.OutputFilename),
		nullableString(c.DownloadURL),
		c.Outcome,
		nullableString(c.ErrorMessage),
		c.Ticks,
		formatTime(c.StartedAt),
		c.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	return res.LastInsertId()
}

// LatestUpload returns the most recent successful upload, or nil.
func (s *Store) LatestUpload(ctx context.Context) (*Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE outcome = ? AND handle IS NOT NULL ORDER BY id DESC LIMIT 1`,
		outcomeOK,
	)
	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest upload: %w", err)
	}
	return u, nil
}

// LatestConversion returns the most recent successful conversion, or nil.
func (s *Store) LatestConversion(ctx context.Context) (*Conversion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+conversionColumns+` FROM conversions WHERE outcome = ? AND download_url IS NOT NULL ORDER BY id DESC LIMIT 1`,
		outcomeOK,
	)
	c, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest conversion: %w", err)
	}
	return c, nil
}

// ListUploads returns uploads newest first. A non-positive limit returns all.
func (s *Store) ListUploads(ctx context.Context, limit int) ([]*Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+uploadColumns+` FROM uploads ORDER BY id DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var out []*Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListConversions returns conversions newest first. A non-positive limit
// returns all.
func (s *Store) ListConversions(ctx context.Context, limit int) ([]*Conversion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conversionColumns+` FROM conversions ORDER BY id DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []*Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkDownloaded stores where a conversion result was saved.
func (s *Store) MarkDownloaded(ctx context.Context, requestID, path string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE conversions SET downloaded_path = ?, downloaded_at = ? WHERE request_id = ?`,
		path, formatTime(time.Now()), requestID,
	)
	if err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark downloaded: unknown request %s", requestID)
	}
	return nil
}

// Clear removes every recorded attempt and returns the number of rows removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var total int64
	for _, table := range []string{"conversions", "uploads"} {
		res, err := s.execWithRetry(ctx, "DELETE FROM "+table)
		if err != nil {
			return total, fmt.Errorf("clear %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
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

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
