package scorecache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisBackend) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisBackend(client)
}

func TestRedisBackend_GetSet(t *testing.T) {
	mr, backend := newTestRedis(t)
	ctx := context.Background()

	_, err := backend.Get(ctx, "scores:r1:j1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, backend.SetWithTTL(ctx, "scores:r1:j1", []byte(`{"score":67}`), time.Hour))

	got, err := backend.Get(ctx, "scores:r1:j1")
	require.NoError(t, err)
	assert.Equal(t, `{"score":67}`, string(got))
	assert.Equal(t, time.Hour, mr.TTL("scores:r1:j1"))

	mr.FastForward(time.Hour)
	_, err = backend.Get(ctx, "scores:r1:j1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisBackend_Delete(t *testing.T) {
	mr, backend := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, backend.SetWithTTL(ctx, "resume:r1", []byte("{}"), time.Hour))
	require.NoError(t, backend.Delete(ctx, "resume:r1"))
	assert.False(t, mr.Exists("resume:r1"))

	// Deleting an absent key is not an error.
	require.NoError(t, backend.Delete(ctx, "resume:absent"))
}

func TestRedisBackend_DeleteByPrefix(t *testing.T) {
	mr, backend := newTestRedis(t)
	ctx := context.Background()

	keys := []string{
		"scores:r1:j1",
		"scores:r1:j2",
		"scores:r10:j1",
		"scores:a*b:j1",
		"scores:aXb:j1",
		"resume:r1",
	}
	for _, key := range keys {
		require.NoError(t, mr.Set(key, "{}"))
	}

	require.NoError(t, backend.DeleteByPrefix(ctx, "scores:r1:"))
	assert.False(t, mr.Exists("scores:r1:j1"))
	assert.False(t, mr.Exists("scores:r1:j2"))
	assert.True(t, mr.Exists("scores:r10:j1"))
	assert.True(t, mr.Exists("resume:r1"))

	// Glob characters in ids are matched literally.
	require.NoError(t, backend.DeleteByPrefix(ctx, "scores:a*b:"))
	assert.False(t, mr.Exists("scores:a*b:j1"))
	assert.True(t, mr.Exists("scores:aXb:j1"))
}

func TestRedisBackend_DeleteByPrefixManyKeys(t *testing.T) {
	mr, backend := newTestRedis(t)

	for i := range scanBatch*2 + 7 {
		require.NoError(t, mr.Set(ScoreKey("r1", time.Duration(i).String()), "{}"))
	}
	require.NoError(t, mr.Set(ScoreKey("r2", "j1"), "{}"))

	require.NoError(t, backend.DeleteByPrefix(context.Background(), ScorePrefix("r1")))
	assert.Equal(t, []string{ScoreKey("r2", "j1")}, mr.Keys())
}

func TestCache_InvalidateOverRedisManyJobs(t *testing.T) {
	mr, backend := newTestRedis(t)
	scorer := newCountingScorer()
	cache := New(backend, scorer, DefaultConfig(), nil)
	ctx := context.Background()

	jobs := make([]string, 0, 250)
	for i := range 250 {
		jobs = append(jobs, fmt.Sprintf("job-%03d", i))
	}
	for _, jobID := range jobs {
		_, err := cache.GetOrCompute(ctx, "r1", jobID, sampleResume(), sampleJob())
		require.NoError(t, err)
	}
	_, err := cache.GetOrCompute(ctx, "r2", "job-000", sampleResume(), sampleJob())
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, "r1"))

	for _, jobID := range jobs {
		_, err := backend.Get(ctx, ScoreKey("r1", jobID))
		require.ErrorIs(t, err, ErrMiss, "stale entry for %s", jobID)
	}
	assert.Equal(t, []string{ScoreKey("r2", "job-000")}, mr.Keys())

	_, err = cache.GetOrCompute(ctx, "r1", "job-042", sampleResume(), sampleJob())
	require.NoError(t, err)
	assert.Equal(t, int64(252), scorer.calls.Load())
}

func TestRedisBackend_Unavailable(t *testing.T) {
	mr, backend := newTestRedis(t)
	mr.Close()

	ctx := context.Background()
	_, err := backend.Get(ctx, "scores:r1:j1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)

	assert.Error(t, backend.SetWithTTL(ctx, "scores:r1:j1", []byte("{}"), time.Hour))
	assert.Error(t, backend.DeleteByPrefix(ctx, "scores:r1:"))
}

func TestCache_OverRedis(t *testing.T) {
	mr, backend := newTestRedis(t)
	scorer := newCountingScorer()
	cache := New(backend, scorer, DefaultConfig(), nil)
	ctx := context.Background()

	first, err := cache.GetOrCompute(ctx, "r1", "j1", sampleResume(), sampleJob())
	require.NoError(t, err)
	second, err := cache.GetOrCompute(ctx, "r1", "j1", sampleResume(), sampleJob())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), scorer.calls.Load())
	assert.Equal(t, time.Hour, mr.TTL("scores:r1:j1"))

	cache.CacheResume(ctx, "r1", sampleResume())
	assert.Equal(t, 24*time.Hour, mr.TTL("resume:r1"))

	require.NoError(t, cache.Invalidate(ctx, "r1"))
	assert.Empty(t, mr.Keys())

	mr.Close()
	result, err := cache.GetOrCompute(ctx, "r1", "j1", sampleResume(), sampleJob())
	require.NoError(t, err)
	assert.Equal(t, 67, result.Score)
	assert.Equal(t, int64(2), scorer.calls.Load())
}

func TestNewRedisClient(t *testing.T) {
	_, err := NewRedisClient(RedisConfig{})
	assert.Error(t, err)

	_, err = NewRedisClient(RedisConfig{URL: "http://localhost:6379"})
	assert.Error(t, err)

	client, err := NewRedisClient(RedisConfig{URL: "redis://:inline@localhost:6379/2", Password: "from-file"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "from-file", opts.Password)
	assert.Equal(t, defaultDialTimeout, opts.DialTimeout)
	assert.Equal(t, defaultReadTimeout, opts.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, opts.WriteTimeout)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	core, observed := observer.New(zapcore.InfoLevel)

	backend, err := ConnectRedis(context.Background(), RedisConfig{URL: "redis://" + mr.Addr()}, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	assert.NoError(t, backend.Ping(context.Background()))
	assert.Equal(t, 1, observed.FilterMessage("connected to redis").Len())
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	core, observed := observer.New(zapcore.WarnLevel)
	backend, err := ConnectRedis(context.Background(), RedisConfig{
		URL:            "redis://" + addr,
		DialTimeout:    100 * time.Millisecond,
		ConnectRetries: 1,
	}, zap.New(core))

	require.Error(t, err)
	require.NotNil(t, backend)
	t.Cleanup(func() { _ = backend.Close() })
	assert.Equal(t, 2, observed.FilterMessage("redis ping failed").Len())
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `scores:a\*b\?\[c\]:`, escapeGlob("scores:a*b?[c]:"))
	assert.Equal(t, `scores:a\\:b:`, escapeGlob(ScorePrefix(`a:b`)))
}
