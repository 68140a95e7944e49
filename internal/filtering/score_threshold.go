package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/listing"
	"github.com/spigell/campus-matcher/internal/logger"
	"github.com/spigell/campus-matcher/internal/portal"
)

type scoreThresholdFilter struct {
	disabled bool
	reason   string
	override *int
	applied  int
}

// NewScoreThreshold creates a filter that scores every candidate against the
// job and keeps those reaching the threshold. Scores stay attached to the
// candidates that are left.
func NewScoreThreshold() Filter {
	return &scoreThresholdFilter{applied: -1}
}

func (f *scoreThresholdFilter) Name() string { return "score_threshold" }

func (f *scoreThresholdFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *scoreThresholdFilter) IsEnabled() bool { return !f.disabled }

func (f *scoreThresholdFilter) Validate(cfg *Config) error {
	f.override = nil
	if cfg != nil && cfg.MinimumScore != nil {
		score := *cfg.MinimumScore
		if score < 0 || score > 100 {
			return errors.New("minimum score must be between 0 and 100")
		}
		f.override = &score
	}
	return nil
}

func (f *scoreThresholdFilter) Apply(ctx context.Context, deps Deps, c *portal.Candidates) (*portal.Candidates, Step, error) {
	initial := c.Len()
	if deps.Job == nil {
		return c, Step{}, errors.New("job is required for scoring")
	}
	if deps.Scores == nil {
		return c, Step{}, errors.New("score source is required")
	}

	threshold := deps.Job.ScoreThreshold
	if f.override != nil {
		threshold = *f.override
	}
	f.applied = threshold

	resumes := make([]*portal.ResumeDocument, 0, c.Len())
	for _, candidate := range c.Items {
		resumes = append(resumes, candidate.Resume)
	}

	results, err := listing.Score(ctx, deps.Scores, listing.ForJob(resumes, deps.Job), deps.Concurrency, deps.Logger)
	if err != nil {
		return c, Step{}, err
	}
	for i, candidate := range c.Items {
		candidate.Match = results[i]
	}

	dropped := c.Retain(func(candidate *portal.Candidate) bool {
		if candidate.Match.MeetsThreshold(threshold) {
			return true
		}
		deps.Logger.Debug("candidate below threshold",
			append(logger.PairFields(candidate.ID(), deps.Job.ID),
				zap.Int("score", candidate.Match.Score),
				zap.Int("threshold", threshold),
			)...,
		)
		return false
	})

	if len(dropped) > 0 {
		deps.Logger.Info("excluding resumes below the score threshold",
			zap.Int("threshold", threshold),
			zap.Strings("excluded_resumes", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *scoreThresholdFilter) Status() Status {
	details := map[string]string{}
	if f.override != nil {
		details["minimum_score"] = strconv.Itoa(*f.override)
	}
	if f.applied >= 0 {
		details["threshold"] = strconv.Itoa(f.applied)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
