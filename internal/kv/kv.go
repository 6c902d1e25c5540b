package kv

import (
	"context"
	"time"
)

// Store defines the key-value primitives the cache layers are built on.
// This abstraction allows swapping between the memory store (development,
// tests) and the Redis store (production) without changing business logic.
type Store interface {
	// Set stores a value under key with no expiry. Setting an existing
	// key replaces its value and clears any TTL.
	Set(ctx context.Context, key string, value []byte) error

	// SetEx stores a value under key that expires after ttl.
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value for key. Returns ErrNotFound if the key
	// does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Incr atomically increments the integer stored at key by one and
	// returns the new value. A missing key counts from zero. Returns
	// ErrNotInteger if the current value is not an integer.
	Incr(ctx context.Context, key string) (int64, error)

	// RPush appends a value to the tail of the list stored at key,
	// creating the list if it does not exist.
	RPush(ctx context.Context, key string, value []byte) error

	// LRange returns the list elements between start and stop inclusive.
	// Negative indices count from the tail, -1 being the last element.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// FlushDB removes every key from the store.
	FlushDB(ctx context.Context) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store connection and any background resources.
	Close() error
}

// StoreError is a sentinel error shared by all Store implementations.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the key does not exist or has expired.
	ErrNotFound StoreError = "key not found"

	// ErrNotInteger indicates an increment on a non-integer value.
	ErrNotInteger StoreError = "value is not an integer"
)
