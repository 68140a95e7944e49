package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/logger"
	"github.com/spigell/campus-matcher/internal/portal"
	"github.com/spigell/campus-matcher/internal/scorecache"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one resume against one job",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("resume", "", "resume document or parser output (json)")
	scoreCmd.Flags().String("job", "", "job document (json)")
	scoreCmd.Flags().String("resume-id", "", "cache id of the resume (default is the document id)")
	scoreCmd.Flags().String("job-id", "", "cache id of the job (default is the document id)")

	scoreCmd.MarkFlagRequired("resume")
	scoreCmd.MarkFlagRequired("job")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := bootstrap()

	resume, err := portal.LoadResume(cmd.Flag("resume").Value.String())
	if err != nil {
		log.Fatal("loading resume", zap.Error(err))
	}
	if !resume.Scorable() {
		log.Fatal("resume is not ready for scoring",
			zap.String("resume_id", resume.ID),
			zap.String("status", string(resume.ProcessingStatus)),
		)
	}

	job, err := loadJob(cmd.Flag("job").Value.String())
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}

	resumeID := resume.ID
	if id := cmd.Flag("resume-id").Value.String(); id != "" {
		resumeID = id
	}
	jobID := job.ID
	if id := cmd.Flag("job-id").Value.String(); id != "" {
		jobID = id
	}

	cache, closeCache, err := newCache(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the score cache", zap.Error(err))
	}
	defer closeCache()

	result, err := scoreFresh(ctx, cache, resumeID, jobID, resume.ParsedData, job, log)
	if err != nil {
		log.Fatal("scoring", zap.Error(err))
	}

	log.Info("resume scored", append(logger.PairFields(resumeID, jobID),
		logger.ScoreFields(result.Score, result.MatchedSkills(), result.BonusFactors)...)...)

	if err := printJSON(cmd.OutOrStdout(), result); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
}

// scoreFresh scores parsed, the resume as given on the command line. When the
// cache holds a different parse under the same id, the resume was re-parsed
// and its cached scores are dropped before scoring.
func scoreFresh(ctx context.Context, cache *scorecache.Cache, resumeID, jobID string, parsed *portal.ParsedResume, job *portal.Job, log *zap.Logger) (*portal.MatchResult, error) {
	if cached, ok := cache.CachedResume(ctx, resumeID); ok && !sameParse(cached, parsed) {
		log.Info("resume changed since it was cached", logger.PairFields(resumeID, "")...)
		if err := cache.Invalidate(ctx, resumeID); err != nil {
			return nil, fmt.Errorf("dropping stale scores: %w", err)
		}
	}
	cache.CacheResume(ctx, resumeID, parsed)

	return cache.GetOrCompute(ctx, resumeID, jobID, parsed, job)
}

func sameParse(a, b *portal.ParsedResume) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(left, right)
}
