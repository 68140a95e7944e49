package scorecache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/utils"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second

	scanBatch      = 100
	connectBackoff = 500 * time.Millisecond
	connectLimit   = 5 * time.Second
)

// RedisConfig describes how to reach the shared Redis instance.
type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	Password       string        `mapstructure:"-"`
	DialTimeout    time.Duration `mapstructure:"dial-timeout"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
	ConnectRetries int           `mapstructure:"connect-retries"`
}

// NewRedisClient parses cfg.URL and builds a client. It does not connect.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("redis url is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	opts.DialTimeout = durationOr(cfg.DialTimeout, defaultDialTimeout)
	opts.ReadTimeout = durationOr(cfg.ReadTimeout, defaultReadTimeout)
	opts.WriteTimeout = durationOr(cfg.WriteTimeout, defaultWriteTimeout)

	return redis.NewClient(opts), nil
}

// RedisBackend stores cache entries in Redis.
type RedisBackend struct {
	client redis.UniversalClient
}

func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// ConnectRedis builds a backend and pings it, retrying with backoff up to
// cfg.ConnectRetries extra times. The backend is returned even when the ping
// keeps failing so callers may decide to run degraded.
func ConnectRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisBackend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	backend := NewRedisBackend(client)

	var pingErr error
	for attempt := 0; attempt <= cfg.ConnectRetries; attempt++ {
		if err := utils.WaitFor(ctx, utils.Backoff(attempt, connectBackoff, connectLimit)); err != nil {
			return backend, err
		}

		if pingErr = backend.Ping(ctx); pingErr == nil {
			logger.Info("connected to redis", zap.Int("attempt", attempt+1))
			return backend, nil
		}

		logger.Warn("redis ping failed",
			zap.Int("attempt", attempt+1),
			zap.Int("retries", cfg.ConnectRetries),
			zap.Error(pingErr),
		)
	}

	return backend, fmt.Errorf("connect to redis: %w", pingErr)
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

func (r *RedisBackend) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes every key that starts with prefix. The keyspace is
// scanned to completion before anything is deleted, since deleting during a
// SCAN may move the cursor past keys that still match.
func (r *RedisBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := escapeGlob(prefix) + "*"

	var matched []string
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		matched = append(matched, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %q: %w", pattern, err)
	}

	for start := 0; start < len(matched); start += scanBatch {
		batch := matched[start:min(start+scanBatch, len(matched))]
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete %d keys: %w", len(batch), err)
		}
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
