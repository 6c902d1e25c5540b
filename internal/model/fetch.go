package model

import "time"

// FetchRecord represents one upstream fetch performed by the web cache.
type FetchRecord struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Status     int       `json:"status"`
	Bytes      int64     `json:"bytes"`
	DurationMs int64     `json:"duration_ms"`
	FetchedAt  time.Time `json:"fetched_at"`
}
