// Package cache provides a small client for storing arbitrary values
// in a key-value store under fresh random keys, with typed readers and
// a persistent, replayable history of every store call.
package cache

import (
	"context"
	"fmt"

	"github.com/reuben-idan/alx-backend-storage/internal/kv"
	"github.com/reuben-idan/alx-backend-storage/pkg/uid"
)

// MethodStore is the call-log identity of Client.Store.
const MethodStore = "cache.Client.Store"

// Client writes values into a key-value store under generated keys and
// reads them back through typed decoders. Every Store call is counted
// and recorded in the call log.
type Client struct {
	store   kv.Store
	log     *CallLog
	storeOp func(context.Context, any) (string, error)
}

// NewClient creates a cache client on top of the given store.
func NewClient(store kv.Store) *Client {
	c := &Client{
		store: store,
		log:   NewCallLog(store),
	}
	c.storeOp = Instrument(c.log, MethodStore, c.doStore)
	return c
}

// Store persists value under a fresh random key and returns the key.
// Supported value types are string, []byte, int, int64 and float64;
// anything else fails with ErrUnsupportedType.
func (c *Client) Store(ctx context.Context, value any) (string, error) {
	return c.storeOp(ctx, value)
}

// doStore is the uninstrumented store operation.
func (c *Client) doStore(ctx context.Context, value any) (string, error) {
	data, err := encode(value)
	if err != nil {
		return "", err
	}

	key := uid.New()
	if err := c.store.Set(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to store value: %w", err)
	}
	return key, nil
}

// Get returns the raw bytes stored under key. A key that was never
// stored, or whose entry expired, fails with kv.ErrNotFound.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.store.Get(ctx, key)
}

// GetString returns the value stored under key as text.
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	return GetAs(ctx, c, key, AsString)
}

// GetInt returns the value stored under key as a base-10 integer.
// Stored bytes that do not parse fail with an error wrapping ErrDecode.
func (c *Client) GetInt(ctx context.Context, key string) (int64, error) {
	return GetAs(ctx, c, key, AsInt)
}

// GetFloat returns the value stored under key as a float.
func (c *Client) GetFloat(ctx context.Context, key string) (float64, error) {
	return GetAs(ctx, c, key, AsFloat)
}

// GetAs reads the value stored under key and converts it with decode.
func GetAs[T any](ctx context.Context, c *Client, key string, decode DecodeFunc[T]) (T, error) {
	var zero T

	data, err := c.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	return decode(data)
}

// Reset wipes every key in the underlying store, including counters
// and call history. Nothing survives.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.store.FlushDB(ctx); err != nil {
		return fmt.Errorf("failed to reset cache: %w", err)
	}
	return nil
}

// Calls returns how many times method has been invoked.
func (c *Client) Calls(ctx context.Context, method string) (int64, error) {
	return c.log.Calls(ctx, method)
}

// History returns the recorded input/output pairs for method.
func (c *Client) History(ctx context.Context, method string) ([]Call, error) {
	return c.log.History(ctx, method)
}

// Replay renders the call report for method.
func (c *Client) Replay(ctx context.Context, method string) (string, error) {
	return c.log.Replay(ctx, method)
}
