// Package listing scores many resume/job pairs at once, the way candidate and
// "my matches" views need them.
package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/campus-matcher/internal/portal"
)

const DefaultConcurrency = 8

// Source returns the match result of one pair, computing it when needed.
type Source interface {
	GetOrCompute(ctx context.Context, resumeID, jobID string, resume *portal.ParsedResume, job *portal.Job) (*portal.MatchResult, error)
}

// Pair is one resume/job combination to score.
type Pair struct {
	ResumeID string
	JobID    string
	Resume   *portal.ParsedResume
	Job      *portal.Job
}

// ForJob pairs every resume with job.
func ForJob(resumes []*portal.ResumeDocument, job *portal.Job) []Pair {
	pairs := make([]Pair, 0, len(resumes))
	for _, resume := range resumes {
		if resume == nil {
			continue
		}
		pairs = append(pairs, Pair{ResumeID: resume.ID, JobID: job.ID, Resume: resume.ParsedData, Job: job})
	}
	return pairs
}

// ForResume pairs resume with every job.
func ForResume(resume *portal.ResumeDocument, jobs []*portal.Job) []Pair {
	pairs := make([]Pair, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		pairs = append(pairs, Pair{ResumeID: resume.ID, JobID: job.ID, Resume: resume.ParsedData, Job: job})
	}
	return pairs
}

// Score resolves every pair through src with at most limit lookups in flight.
// Results are returned in the order of pairs. The first failing pair cancels
// the remaining lookups and its error is returned.
func Score(ctx context.Context, src Source, pairs []Pair, limit int, logger *zap.Logger) ([]*portal.MatchResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	log := logger.With(zap.String("listing_id", uuid.NewString()))
	log.Debug("scoring listing", zap.Int("pairs", len(pairs)), zap.Int("concurrency", limit))
	started := time.Now()

	results := make([]*portal.MatchResult, len(pairs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, pair := range pairs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			result, err := src.GetOrCompute(gCtx, pair.ResumeID, pair.JobID, pair.Resume, pair.Job)
			if err != nil {
				return fmt.Errorf("score resume %q for job %q: %w", pair.ResumeID, pair.JobID, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn("listing aborted", zap.Error(err))
		return nil, err
	}

	log.Debug("listing scored", zap.Int("pairs", len(pairs)), zap.Duration("took", time.Since(started)))
	return results, nil
}
