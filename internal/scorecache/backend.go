// Package scorecache keeps computed match results for a (resume, job) pair
// for a bounded time so candidate listings do not rescore on every request.
package scorecache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend is the key/value store behind the cache. Values are opaque bytes
// written whole; implementations must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Delete(ctx context.Context, key string) error
}

// NopBackend stores nothing; every read is a miss.
type NopBackend struct{}

func (NopBackend) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (NopBackend) SetWithTTL(context.Context, string, []byte, time.Duration) error { return nil }

func (NopBackend) DeleteByPrefix(context.Context, string) error { return nil }

func (NopBackend) Delete(context.Context, string) error { return nil }
