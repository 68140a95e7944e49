package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/portal"
)

type processingStatusFilter struct{}

// NewProcessingStatus creates a filter that removes resumes the parser has not
// finished with. They have nothing to score yet.
func NewProcessingStatus() Filter {
	return &processingStatusFilter{}
}

func (f *processingStatusFilter) Name() string { return "processing_status" }

func (f *processingStatusFilter) Disable(string) {}

func (f *processingStatusFilter) IsEnabled() bool { return true }

func (f *processingStatusFilter) Validate(*Config) error { return nil }

func (f *processingStatusFilter) Apply(_ context.Context, deps Deps, c *portal.Candidates) (*portal.Candidates, Step, error) {
	initial := c.Len()
	dropped := c.Retain(func(candidate *portal.Candidate) bool {
		return candidate.Resume.Scorable()
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding resumes without completed parsing",
			zap.Strings("excluded_resumes", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *processingStatusFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
