package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/campus-matcher/internal/filtering"
	"github.com/spigell/campus-matcher/internal/portal"
	"github.com/spigell/campus-matcher/internal/scorecache"
)

const (
	PromptReport              = "Show report by score"
	PromptCandidatesToFile    = "Dump candidates to file"
	PromptAppendToExcludeFile = "Append all candidates to exclude file"
	PromptInvalidateScores    = "Invalidate cached scores of the candidates"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List resumes that meet a job's score threshold",
	Run: func(cmd *cobra.Command, _ []string) {
		candidates(cmd)
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().String("job", "", "job document (json)")
	candidatesCmd.Flags().String("resumes", "", "directory with resume documents")
	candidatesCmd.Flags().StringP("exclude-file", "e", "", "special file with resumes to exclude. Default is unset.")
	candidatesCmd.Flags().Int("minimum-score", 0, "override the job's score threshold")
	candidatesCmd.Flags().BoolP("auto-approve", "y", false, "print the report without asking")

	candidatesCmd.MarkFlagRequired("job")
	candidatesCmd.MarkFlagRequired("resumes")

	viper.BindPFlag("candidates.exclude-file", candidatesCmd.Flags().Lookup("exclude-file"))
}

func candidates(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := bootstrap()

	job, err := loadJob(cmd.Flag("job").Value.String())
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}

	resumes, err := portal.LoadResumes(cmd.Flag("resumes").Value.String())
	if err != nil {
		log.Fatal("loading resumes", zap.Error(err))
	}

	log.Info("starting candidate selection",
		zap.String("job", job.String()),
		zap.Int("resumes", len(resumes)),
		zap.String("version", version),
	)

	if len(resumes) == 0 {
		log.Info("exiting", zap.String("reason", "no resumes found"))
		return
	}

	cache, closeCache, err := newCache(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the score cache", zap.Error(err))
	}
	defer closeCache()

	filterCfg := &filtering.Config{
		ExcludeFile:  config.Candidates.ExcludeFile,
		MinimumScore: config.Candidates.MinimumScore,
	}
	if flag := cmd.Flag("minimum-score"); flag.Changed {
		minimum, _ := cmd.Flags().GetInt("minimum-score")
		filterCfg.MinimumScore = &minimum
	}

	steps := filtering.Default()
	deps := filtering.Deps{
		Logger:      log,
		Scores:      cache,
		Job:         job,
		Concurrency: config.Scoring.Concurrency,
	}

	pool, err := filtering.Run(ctx, filterCfg, deps, steps, portal.NewCandidates(resumes))
	if err != nil {
		log.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range filtering.Describe(steps) {
		log.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	stats := cache.Stats()
	log.Info("cache usage", zap.Int64("hits", stats.Hits), zap.Int64("misses", stats.Misses), zap.Int64("errors", stats.Errors))

	if pool.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove {
		if err := printJSON(cmd.OutOrStdout(), pool.ReportByScore()); err != nil {
			log.Fatal("printing report", zap.Error(err))
		}
		return
	}

	items := []string{PromptReport, PromptCandidatesToFile}
	if filterCfg.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	items = append(items, PromptInvalidateScores, PromptExit)

	prompt := promptui.Select{
		Label: "What next?",
		Items: items,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		log.Info("current list of candidates", zap.Int("count", pool.Len()))

		if err := handleAction(ctx, cmd, action, log, cache, filterCfg.ExcludeFile, pool); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, cmd *cobra.Command, action string, log *zap.Logger, cache *scorecache.Cache, excludeFile string, pool *portal.Candidates) error {
	switch action {
	case PromptExit:
		log.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReport:
		return printJSON(cmd.OutOrStdout(), pool.ReportByScore())
	case PromptCandidatesToFile:
		filename, err := pool.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		log.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(excludeFile, pool, log)
	case PromptInvalidateScores:
		return invalidateAll(ctx, cache, pool.IDs(), log)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(path string, pool *portal.Candidates, log *zap.Logger) error {
	excluded, err := portal.GetExcludedResumesFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		excluded, err = &portal.ExcludedResumes{}, nil
	}
	if err != nil {
		return err
	}

	excluded.Append(pool.ToExcluded())

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	log.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", pool.Len()))

	pool.Exclude(excluded.ResumeIDs())
	return nil
}

func invalidateAll(ctx context.Context, cache *scorecache.Cache, resumeIDs []string, log *zap.Logger) error {
	var errs []error
	for _, id := range resumeIDs {
		if err := cache.Invalidate(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info("invalidated cached scores", zap.Int("resumes", len(resumeIDs)))
	return nil
}
