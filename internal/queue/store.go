package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users must clear the job database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("queue open: database path required")
	}
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("queue open: ensure directory: %w", err)
		}
	}

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
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
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

// NewJob inserts a pending job from the supplied listing spec.
func (s *Store) NewJob(ctx context.Context, spec JobSpec) (*Item, error) {
	detailsJSON := ""
	if len(spec.Details) > 0 {
		raw, err := json.Marshal(spec.Details)
		if err != nil {
			return nil, fmt.Errorf("encode details: %w", err)
		}
		detailsJSON = string(raw)
	}
	imagesJSON := ""
	if len(spec.Images) > 0 {
		raw, err := json.Marshal(spec.Images)
		if err != nil {
			return nil, fmt.Errorf("encode image list: %w", err)
		}
		imagesJSON = string(raw)
	}
	language := strings.TrimSpace(spec.Language)
	if language == "" {
		language = "ro"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO jobs (
                title, category, description, price, language,
                details_json, images_json, status, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			spec.Title, spec.Category, spec.Description, spec.Price, language,
			nullableString(detailsJSON), nullableString(imagesJSON),
			StatusPending, timestamp, timestamp,
		)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a single job.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM jobs WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return item, nil
}

// ClaimNext atomically selects the oldest pending job and marks it
// processing. Returns nil when the queue has no pending work.
func (s *Store) ClaimNext(ctx context.Context) (*Item, error) {
	var item *Item
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx,
			selectColumns+" FROM jobs WHERE status = ? ORDER BY created_at, id LIMIT 1",
			StatusPending,
		)
		claimed, err := scanItem(row)
		if errors.Is(err, sql.ErrNoRows) {
			item = nil
			return nil
		}
		if err != nil {
			return err
		}

		timestamp := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.ExecContext(ctx,
			"UPDATE jobs SET status = ?, progress_stage = ?, progress_message = ?, error_message = NULL, updated_at = ? WHERE id = ?",
			StatusProcessing, "Starting", "Generation started", timestamp, claimed.ID,
		); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		claimed.Status = StatusProcessing
		claimed.ProgressStage = "Starting"
		claimed.ProgressMessage = "Generation started"
		claimed.ErrorMessage = ""
		item = claimed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return item, nil
}

// Update persists mutable job fields.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("update: nil item")
	}
	timestamp := time.Now().UTC()
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`UPDATE jobs SET
                status = ?, error_message = ?, video_url = ?, thumbnail_url = ?,
                script = ?, captions = ?, duration = ?, cost = ?,
                progress_stage = ?, progress_message = ?, updated_at = ?
            WHERE id = ?`,
			item.Status, nullableString(item.ErrorMessage),
			nullableString(item.VideoURL), nullableString(item.ThumbnailURL),
			nullableString(item.Script), nullableString(item.Captions),
			item.Duration, item.Cost,
			nullableString(item.ProgressStage), nullableString(item.ProgressMessage),
			timestamp.Format(time.RFC3339Nano), item.ID,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update job %d: %w", item.ID, err)
	}
	item.UpdatedAt = timestamp
	return nil
}

// List returns jobs filtered by status; with no statuses it returns all jobs,
// newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := selectColumns + " FROM jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Counts aggregates job totals per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Retry moves a failed or review job back to pending.
func (s *Store) Retry(ctx context.Context, id int64) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`UPDATE jobs SET status = ?, error_message = NULL,
                progress_stage = NULL, progress_message = NULL, updated_at = ?
            WHERE id = ? AND status IN (?, ?)`,
			StatusPending, timestamp, id, StatusFailed, StatusReview,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("retry job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("retry job %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("retry job %d: %w or not retryable", id, ErrNotFound)
	}
	return nil
}

// ResetStuck returns processing jobs to pending. Called on daemon startup so
// jobs interrupted by a crash are picked up again.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			"UPDATE jobs SET status = ?, updated_at = ? WHERE status = ?",
			StatusPending, timestamp, StatusProcessing,
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes jobs with the given statuses; with no statuses it deletes
// completed jobs only.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	if len(statuses) == 0 {
		statuses = []Status{StatusCompleted}
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			"DELETE FROM jobs WHERE status IN ("+strings.Join(placeholders, ", ")+")",
			args...,
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT
    id, title, category, description, price, language,
    details_json, images_json, status, error_message,
    video_url, thumbnail_url, script, captions, duration, cost,
    progress_stage, progress_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item                       Item
		details, images            sql.NullString
		errMsg, videoURL, thumbURL sql.NullString
		script, captions           sql.NullString
		progStage, progMsg         sql.NullString
		status                     string
		createdAt, updatedAt       string
	)
	if err := row.Scan(
		&item.ID, &item.Title, &item.Category, &item.Description, &item.Price, &item.Language,
		&details, &images, &status, &errMsg,
		&videoURL, &thumbURL, &script, &captions, &item.Duration, &item.Cost,
		&progStage, &progMsg, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	item.DetailsJSON = details.String
	item.ImagesJSON = images.String
	item.Status = Status(status)
	item.ErrorMessage = errMsg.String
	item.VideoURL = videoURL.String
	item.ThumbnailURL = thumbURL.String
	item.Script = script.String
	item.Captions = captions.String
	item.ProgressStage = progStage.String
	item.ProgressMessage = progMsg.String
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}

func parseTimestamp(value string) time.Time {
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed
	}
	return time.Time{}
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
