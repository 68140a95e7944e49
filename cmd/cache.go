package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/scorecache"
	"github.com/spigell/campus-matcher/internal/scoring"
	"github.com/spigell/campus-matcher/internal/secrets"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
	backendNone   = "none"
)

// newBackend builds the cache backend selected in the config. The returned
// close func is never nil.
func newBackend(ctx context.Context, cfg *CacheConfig, logger *zap.Logger) (scorecache.Backend, func(), error) {
	noop := func() {}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", backendMemory:
		return scorecache.NewMemoryBackend(nil), noop, nil
	case backendNone:
		return scorecache.NopBackend{}, noop, nil
	case backendRedis:
	default:
		return nil, noop, fmt.Errorf("unsupported cache backend %q (use %s, %s or %s)", cfg.Backend, backendMemory, backendRedis, backendNone)
	}

	redisCfg := cfg.Redis
	if redisCfg == nil {
		redisCfg = &RedisConfig{}
	}

	password, err := secrets.LoadOptional(secrets.Source{
		Name: "redis password",
		Env:  "REDIS_PASSWORD",
		File: redisCfg.PasswordFile,
	})
	if err != nil {
		return nil, noop, err
	}

	redis, err := scorecache.ConnectRedis(ctx, scorecache.RedisConfig{
		URL:            redisCfg.URL,
		Password:       password,
		ConnectRetries: redisCfg.ConnectRetries,
	}, logger)
	if redis == nil {
		return nil, noop, err
	}
	if err != nil {
		// Scores are still computed; every lookup just misses until Redis is back.
		logger.Warn("redis is unavailable, running without a warm cache", zap.Error(err))
	}

	closeFn := func() {
		if err := redis.Close(); err != nil {
			logger.Debug("closing redis client", zap.Error(err))
		}
	}
	return redis, closeFn, nil
}

func newCache(ctx context.Context, config *Config, logger *zap.Logger) (*scorecache.Cache, func(), error) {
	backend, closeFn, err := newBackend(ctx, config.Cache, logger)
	if err != nil {
		return nil, closeFn, fmt.Errorf("building cache backend: %w", err)
	}

	cache := scorecache.New(backend, scoring.NewEngine(nil), scorecache.Config{
		TTL:       config.Cache.TTL,
		ResumeTTL: config.Cache.ResumeTTL,
		Timeout:   config.Cache.Timeout,
	}, logger)

	logger.Debug("score cache ready",
		zap.String("backend", config.Cache.Backend),
		zap.Duration("ttl", config.Cache.TTL),
		zap.Duration("timeout", config.Cache.Timeout),
	)
	return cache, closeFn, nil
}
