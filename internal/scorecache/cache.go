package scorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/logger"
	"github.com/spigell/campus-matcher/internal/portal"
	"github.com/spigell/campus-matcher/internal/scoring"
	"github.com/spigell/campus-matcher/internal/utils"
)

const (
	scoreNamespace  = "scores"
	resumeNamespace = "resume"

	previewLimit = 120
)

// ErrKeyRequired is returned when a resume or job id is empty.
var ErrKeyRequired = errors.New("resume id and job id are required")

// Config controls entry lifetimes and the per-call backend timeout.
type Config struct {
	TTL       time.Duration `mapstructure:"ttl"`
	ResumeTTL time.Duration `mapstructure:"resume-ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		TTL:       time.Hour,
		ResumeTTL: 24 * time.Hour,
		Timeout:   2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TTL <= 0 {
		c.TTL = def.TTL
	}
	if c.ResumeTTL <= 0 {
		c.ResumeTTL = def.ResumeTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// Stats counts cache outcomes since construction.
type Stats struct {
	Hits   int64
	Misses int64
	Errors int64
}

// Cache memoizes match results per (resume, job) pair on top of a Backend.
// A Backend that fails or times out degrades the cache to always computing.
type Cache struct {
	backend Backend
	scorer  scoring.Scorer
	cfg     Config
	logger  *zap.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// New builds a Cache. A nil backend never stores anything, a nil scorer uses
// the wall clock engine and a nil logger discards output.
func New(backend Backend, scorer scoring.Scorer, cfg Config, log *zap.Logger) *Cache {
	if backend == nil {
		backend = NopBackend{}
	}
	if scorer == nil {
		scorer = scoring.NewEngine(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Cache{
		backend: backend,
		scorer:  scorer,
		cfg:     cfg.withDefaults(),
		logger:  log,
	}
}

// GetOrCompute returns the cached result for the pair or scores resume
// against job and stores the outcome. A hit is returned unchanged and does
// not extend the entry's lifetime.
func (c *Cache) GetOrCompute(ctx context.Context, resumeID, jobID string, resume *portal.ParsedResume, job *portal.Job) (*portal.MatchResult, error) {
	if strings.TrimSpace(resumeID) == "" || strings.TrimSpace(jobID) == "" {
		return nil, ErrKeyRequired
	}

	key := ScoreKey(resumeID, jobID)
	log := logger.WithPair(c.logger, resumeID, jobID)

	if cached, ok := c.lookup(ctx, key, log); ok {
		c.hits.Add(1)
		log.Debug("score cache hit", logger.ScoreFields(cached.Score, cached.MatchedSkills(), cached.BonusFactors)...)
		return cached, nil
	}
	c.misses.Add(1)

	result := c.scorer.Score(resume, job)
	log.Debug("score computed", logger.ScoreFields(result.Score, result.MatchedSkills(), result.BonusFactors)...)

	payload, err := json.Marshal(result)
	if err != nil {
		c.failures.Add(1)
		log.Warn("encode score for cache", zap.Error(err))
		return result, nil
	}

	if err := c.write(ctx, key, payload, c.cfg.TTL); err != nil {
		c.failures.Add(1)
		log.Warn("score cache write failed", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

func (c *Cache) lookup(ctx context.Context, key string, log *zap.Logger) (*portal.MatchResult, bool) {
	payload, err := c.read(ctx, key)
	if errors.Is(err, ErrMiss) {
		return nil, false
	}
	if err != nil {
		c.failures.Add(1)
		log.Warn("score cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var result portal.MatchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.failures.Add(1)
		log.Warn("undecodable score cache entry",
			zap.String("key", key),
			zap.String("payload", utils.TruncateForLog(string(payload), previewLimit)),
			zap.Error(err),
		)
		return nil, false
	}

	return &result, true
}

// Invalidate removes every cached score of the resume and its cached parsed
// resume. Backend errors are returned since stale scores would otherwise stay.
func (c *Cache) Invalidate(ctx context.Context, resumeID string) error {
	if strings.TrimSpace(resumeID) == "" {
		return ErrKeyRequired
	}

	var errs []error
	if err := c.call(ctx, func(ctx context.Context) error {
		return c.backend.DeleteByPrefix(ctx, ScorePrefix(resumeID))
	}); err != nil {
		errs = append(errs, fmt.Errorf("invalidate scores of resume %q: %w", resumeID, err))
	}

	if err := c.call(ctx, func(ctx context.Context) error {
		return c.backend.Delete(ctx, ResumeKey(resumeID))
	}); err != nil {
		errs = append(errs, fmt.Errorf("invalidate parsed resume %q: %w", resumeID, err))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	c.logger.Info("score cache invalidated", logger.PairFields(resumeID, "")...)
	return nil
}

// InvalidateJob removes the single cached score of the pair.
func (c *Cache) InvalidateJob(ctx context.Context, resumeID, jobID string) error {
	if strings.TrimSpace(resumeID) == "" || strings.TrimSpace(jobID) == "" {
		return ErrKeyRequired
	}

	if err := c.call(ctx, func(ctx context.Context) error {
		return c.backend.Delete(ctx, ScoreKey(resumeID, jobID))
	}); err != nil {
		return fmt.Errorf("invalidate score of resume %q for job %q: %w", resumeID, jobID, err)
	}

	c.logger.Info("score cache entry invalidated", logger.PairFields(resumeID, jobID)...)
	return nil
}

// CacheResume stores parser output for the resume. Failures are logged only.
func (c *Cache) CacheResume(ctx context.Context, resumeID string, resume *portal.ParsedResume) {
	if strings.TrimSpace(resumeID) == "" || resume == nil {
		return
	}

	log := logger.WithPair(c.logger, resumeID, "")
	payload, err := json.Marshal(resume)
	if err != nil {
		c.failures.Add(1)
		log.Warn("encode parsed resume for cache", zap.Error(err))
		return
	}

	if err := c.write(ctx, ResumeKey(resumeID), payload, c.cfg.ResumeTTL); err != nil {
		c.failures.Add(1)
		log.Warn("resume cache write failed", zap.Error(err))
	}
}

// CachedResume returns the stored parser output, if any.
func (c *Cache) CachedResume(ctx context.Context, resumeID string) (*portal.ParsedResume, bool) {
	if strings.TrimSpace(resumeID) == "" {
		return nil, false
	}

	log := logger.WithPair(c.logger, resumeID, "")
	payload, err := c.read(ctx, ResumeKey(resumeID))
	if errors.Is(err, ErrMiss) {
		return nil, false
	}
	if err != nil {
		c.failures.Add(1)
		log.Warn("resume cache read failed", zap.Error(err))
		return nil, false
	}

	var resume portal.ParsedResume
	if err := json.Unmarshal(payload, &resume); err != nil {
		c.failures.Add(1)
		log.Warn("undecodable resume cache entry",
			zap.String("payload", utils.TruncateForLog(string(payload), previewLimit)),
			zap.Error(err),
		)
		return nil, false
	}
	return &resume, true
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.failures.Load(),
	}
}

func (c *Cache) read(ctx context.Context, key string) ([]byte, error) {
	return within(ctx, c.cfg.Timeout, func(ctx context.Context) ([]byte, error) {
		return c.backend.Get(ctx, key)
	})
}

func (c *Cache) write(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.call(ctx, func(ctx context.Context) error {
		return c.backend.SetWithTTL(ctx, key, payload, ttl)
	})
}

func (c *Cache) call(ctx context.Context, fn func(context.Context) error) error {
	_, err := within(ctx, c.cfg.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

type outcome[T any] struct {
	value T
	err   error
}

// within runs fn under timeout. A backend that ignores its context is
// abandoned once the deadline passes.
func within[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		value, err := fn(ctx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("cache backend: %w", ctx.Err())
	}
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

func escapeKeyPart(s string) string {
	return keyEscaper.Replace(s)
}

// ScoreKey is the backend key of the pair's score: scores:<resume>:<job>.
// Separators inside ids are escaped so distinct pairs never share a key.
func ScoreKey(resumeID, jobID string) string {
	return ScorePrefix(resumeID) + escapeKeyPart(jobID)
}

// ScorePrefix is shared by every score key of the resume.
func ScorePrefix(resumeID string) string {
	return scoreNamespace + ":" + escapeKeyPart(resumeID) + ":"
}

func ResumeKey(resumeID string) string {
	return resumeNamespace + ":" + escapeKeyPart(resumeID)
}
