package cmd

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/listing"
	"github.com/spigell/campus-matcher/internal/portal"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Score a resume against every active job",
	Run: func(cmd *cobra.Command, _ []string) {
		matches(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	matchesCmd.Flags().String("resume", "", "resume document or parser output (json)")
	matchesCmd.Flags().String("jobs", "", "directory with job documents")

	matchesCmd.MarkFlagRequired("resume")
	matchesCmd.MarkFlagRequired("jobs")
}

func matches(cmd *cobra.Command) {
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

	all, err := portal.LoadJobs(cmd.Flag("jobs").Value.String())
	if err != nil {
		log.Fatal("loading jobs", zap.Error(err))
	}

	jobs := activeJobs(all, log)
	if len(jobs) == 0 {
		log.Info("exiting", zap.String("reason", "no active jobs found"))
		return
	}

	cache, closeCache, err := newCache(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the score cache", zap.Error(err))
	}
	defer closeCache()

	results, err := listing.Score(ctx, cache, listing.ForResume(resume, jobs), config.Scoring.Concurrency, log)
	if err != nil {
		log.Fatal("scoring jobs", zap.Error(err))
	}

	log.Info("jobs scored", zap.String("resume_id", resume.ID), zap.Int("count", len(results)))

	if err := printJSON(cmd.OutOrStdout(), matchReport(jobs, results)); err != nil {
		log.Fatal("printing report", zap.Error(err))
	}
}

// activeJobs drops closed postings and documents that fail validation.
func activeJobs(jobs []*portal.Job, log *zap.Logger) []*portal.Job {
	active := make([]*portal.Job, 0, len(jobs))
	for _, job := range jobs {
		if !job.IsActive {
			log.Debug("skipping inactive job", zap.String("job_id", job.ID))
			continue
		}
		if err := job.Validate(); err != nil {
			log.Warn("skipping invalid job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		active = append(active, job)
	}
	return active
}

// matchReport pairs each job with its score, best match first.
func matchReport(jobs []*portal.Job, results []*portal.MatchResult) []map[string]string {
	order := make([]int, len(jobs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].Score > results[order[b]].Score
	})

	report := make([]map[string]string, 0, len(jobs))
	for _, i := range order {
		job, result := jobs[i], results[i]
		report = append(report, map[string]string{
			"job_id":          job.ID,
			"title":           job.Title,
			"company":         job.Company,
			"job_type":        string(job.JobType),
			"score":           strconv.Itoa(result.Score),
			"threshold":       strconv.Itoa(job.ScoreThreshold),
			"meets_threshold": strconv.FormatBool(result.MeetsThreshold(job.ScoreThreshold)),
			"matched_skills":  strings.Join(result.MatchedSkills(), ", "),
		})
	}
	return report
}
