// Package kv abstracts the TTL key-value store backing sessions, token
// blacklisting and OTP attempt counters.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyMissing is returned by Get for keys that do not exist or have
// expired. Callers distinguish it from infrastructure failures.
var ErrKeyMissing = errors.New("kv: key missing")

// CompareAndDeleteResult reports the outcome of an atomic consume.
type CompareAndDeleteResult int

const (
	// CadDeleted means the key existed with the expected value and was
	// removed.
	CadDeleted CompareAndDeleteResult = iota
	// CadMissing means the key did not exist.
	CadMissing
	// CadMismatch means the key existed but held a different value.
	CadMismatch
)

// Store is the key-value contract. All operations honour the context
// deadline and return domain-neutral errors.
type Store interface {
	// Get returns the value for key, or ErrKeyMissing.
	Get(ctx context.Context, key string) (string, error)

	// SetTTL writes key with value, expiring after ttl. A zero ttl means
	// no expiry.
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Increment atomically adds one to the integer at key, creating it at
	// 1 if absent, and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)

	// Expire sets the remaining lifetime of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// CompareAndDelete removes key only if it currently holds want. The
	// check and delete execute atomically on the store.
	CompareAndDelete(ctx context.Context, key, want string) (CompareAndDeleteResult, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
