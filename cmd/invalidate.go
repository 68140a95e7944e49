package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached scores of a resume, or of a single resume/job pair",
	Run: func(cmd *cobra.Command, _ []string) {
		invalidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(invalidateCmd)

	invalidateCmd.Flags().String("resume-id", "", "resume whose cached scores are dropped")
	invalidateCmd.Flags().String("job-id", "", "drop only the score for this job")
	invalidateCmd.Flags().Bool("yes", false, "do not ask for confirmation")

	invalidateCmd.MarkFlagRequired("resume-id")
}

func invalidate(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := bootstrap()

	resumeID, _ := cmd.Flags().GetString("resume-id")
	jobID, _ := cmd.Flags().GetString("job-id")

	target := fmt.Sprintf("all cached scores of resume %s", resumeID)
	if jobID != "" {
		target = fmt.Sprintf("the cached score of resume %s for job %s", resumeID, jobID)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirm := promptui.Prompt{
			Label:     "Drop " + target,
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				log.Info("exiting", zap.String("reason", "invalidation declined"))
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}

	cache, closeCache, err := newCache(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the score cache", zap.Error(err))
	}
	defer closeCache()

	if jobID != "" {
		err = cache.InvalidateJob(ctx, resumeID, jobID)
	} else {
		err = cache.Invalidate(ctx, resumeID)
	}
	if err != nil {
		log.Fatal("invalidating cache", zap.Error(err))
	}

	log.Info("done", zap.String("invalidated", target))
}
