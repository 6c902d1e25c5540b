package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/reuben-idan/alx-backend-storage/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteFetchLogRepository implements FetchLogRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteFetchLogRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteFetchLogRepository creates a new SQLite fetch journal.
// dbPath is the path to the SQLite database file (e.g., "./data/fetchlog.db")
func NewSQLiteFetchLogRepository(dbPath string) (*SQLiteFetchLogRepository, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	// Create table if not exists
	if err := createFetchLogTable(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteFetchLog] Initialized with database: %s", dbPath)
	return &SQLiteFetchLogRepository{db: db}, nil
}

// createFetchLogTable creates the fetch journal table.
func createFetchLogTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS fetch_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		status INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fetch_log_fetched_at ON fetch_log(fetched_at);
	`
	_, err := db.Exec(query)
	return err
}

// InsertFetch records one upstream fetch.
func (r *SQLiteFetchLogRepository) InsertFetch(ctx context.Context, rec *model.FetchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO fetch_log (url, status, bytes, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, rec.URL, rec.Status, rec.Bytes, rec.DurationMs, rec.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fetch record: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListFetches returns fetch records newest first, with the total count
// for pagination.
func (r *SQLiteFetchLogRepository) ListFetches(ctx context.Context, limit, offset int) ([]model.FetchRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, url, status, bytes, duration_ms, fetched_at
		FROM fetch_log
		ORDER BY fetched_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list fetch records: %w", err)
	}
	defer rows.Close()

	records := []model.FetchRecord{}
	for rows.Next() {
		var rec model.FetchRecord
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Status, &rec.Bytes, &rec.DurationMs, &rec.FetchedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fetch_log").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count fetch records: %w", err)
	}

	return records, total, nil
}

// DeleteFetchesBefore removes journal rows fetched before cutoff.
func (r *SQLiteFetchLogRepository) DeleteFetchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `DELETE FROM fetch_log WHERE fetched_at < ?`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete fetch records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLiteFetchLog] Pruned %d fetch records older than %s", deleted, cutoff.Format(time.RFC3339))
	}

	return deleted, nil
}

// Close closes the database connection.
func (r *SQLiteFetchLogRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteFetchLogRepository implements FetchLogRepository
var _ FetchLogRepository = (*SQLiteFetchLogRepository)(nil)
