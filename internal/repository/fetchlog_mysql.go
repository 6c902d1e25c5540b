package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/reuben-idan/alx-backend-storage/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLFetchLogRepository implements FetchLogRepository using MySQL.
type MySQLFetchLogRepository struct {
	db *sql.DB
}

// NewMySQLFetchLogRepository creates a new MySQL fetch journal. The DSN
// must include parseTime=true so DATETIME columns scan into time.Time.
func NewMySQLFetchLogRepository(dsn string) (*MySQLFetchLogRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS fetch_log (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		url VARCHAR(2048) NOT NULL,
		status INT NOT NULL,
		bytes BIGINT NOT NULL,
		duration_ms BIGINT NOT NULL,
		fetched_at DATETIME(3) NOT NULL,
		INDEX idx_fetch_log_fetched_at (fetched_at)
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLFetchLog] Initialized")
	return &MySQLFetchLogRepository{db: db}, nil
}

// InsertFetch records one upstream fetch.
func (r *MySQLFetchLogRepository) InsertFetch(ctx context.Context, rec *model.FetchRecord) error {
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
func (r *MySQLFetchLogRepository) ListFetches(ctx context.Context, limit, offset int) ([]model.FetchRecord, int64, error) {
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
func (r *MySQLFetchLogRepository) DeleteFetchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
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
		log.Printf("[MySQLFetchLog] Pruned %d fetch records older than %s", deleted, cutoff.Format(time.RFC3339))
	}

	return deleted, nil
}

// Close closes the database connection.
func (r *MySQLFetchLogRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLFetchLogRepository implements FetchLogRepository
var _ FetchLogRepository = (*MySQLFetchLogRepository)(nil)
