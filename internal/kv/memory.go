package kv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// memEntry is a stored value with optional expiration.
type memEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// expired reports whether the entry has passed its expiry time.
func (e *memEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// MemoryStore is an in-memory implementation of Store with Redis-like
// semantics. Use it for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	lists   map[string][][]byte

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewMemoryStore creates a memory store with automatic cleanup of
// expired entries.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries:         make(map[string]*memEntry),
		lists:           make(map[string][][]byte),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Set stores a value under key with no expiry.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memEntry{value: cloneBytes(value)}
	return nil
}

// SetEx stores a value under key that expires after ttl.
func (s *MemoryStore) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memEntry{
		value:     cloneBytes(value),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get retrieves the value for key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists || entry.expired() {
		return nil, ErrNotFound
	}
	return cloneBytes(entry.value), nil
}

// Incr atomically increments the integer stored at key. A missing or
// expired key counts from zero. An existing TTL is preserved.
func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	var expiresAt time.Time

	if entry, exists := s.entries[key]; exists && !entry.expired() {
		parsed, err := strconv.ParseInt(string(entry.value), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		n = parsed
		expiresAt = entry.expiresAt
	}

	n++
	s.entries[key] = &memEntry{
		value:     strconv.AppendInt(nil, n, 10),
		expiresAt: expiresAt,
	}
	return n, nil
}

// RPush appends a value to the list stored at key.
func (s *MemoryStore) RPush(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append(s.lists[key], cloneBytes(value))
	return nil
}

// LRange returns the list elements between start and stop inclusive,
// with negative indices counting from the tail.
func (s *MemoryStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[key]
	n := int64(len(list))

	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return nil, nil
	}

	out := make([][]byte, 0, stop-start+1)
	for _, v := range list[start : stop+1] {
		out = append(out, cloneBytes(v))
	}
	return out, nil
}

// FlushDB removes every key from the store.
func (s *MemoryStore) FlushDB(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*memEntry)
	s.lists = make(map[string][][]byte)
	return nil
}

// Ping always succeeds for the memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close stops the background cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// cleanup periodically removes expired entries.
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// removeExpired removes all expired entries.
func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if entry.expired() {
			delete(s.entries, key)
		}
	}
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
