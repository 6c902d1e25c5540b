package repository

import (
	"context"
	"time"

	"github.com/reuben-idan/alx-backend-storage/internal/model"
)

// FetchLogRepository defines the interface for the upstream fetch
// journal. Unlike the cache itself the journal is durable; it survives
// store flushes and restarts.
type FetchLogRepository interface {
	InsertFetch(ctx context.Context, rec *model.FetchRecord) error
	ListFetches(ctx context.Context, limit, offset int) ([]model.FetchRecord, int64, error)
	DeleteFetchesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
