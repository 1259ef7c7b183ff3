package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/extract"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a resume against a job description and print the result as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := setup()

		if err := evaluate(cmd, config, logger); err != nil {
			logger.Fatal("evaluating", zap.Error(err))
		}
	},
}

// evaluate returns errors instead of exiting so the application is closed and
// background saves finish first.
func evaluate(cmd *cobra.Command, config *Config, logger *zap.Logger) error {
	ctx := cmd.Context()

	resumeText, err := extract.Load(ctx, cmd.Flag("resume").Value.String())
	if err != nil {
		return fmt.Errorf("reading the resume: %w", err)
	}

	jd := cmd.Flag("job-text").Value.String()
	if path := cmd.Flag("job").Value.String(); path != "" {
		jd, err = extract.Load(ctx, path)
		if err != nil {
			return fmt.Errorf("reading the job description: %w", err)
		}
	}

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("building the evaluator: %w", err)
	}
	defer a.close()

	res, err := a.evaluator.Evaluate(ctx, evaluator.Request{
		ResumeText:     resumeText,
		JobDescription: jd,
		Tier:           evaluator.Tier(strings.ToLower(cmd.Flag("tier").Value.String())),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing the result: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("resume", "r", "", "resume file (.txt, .md, .pdf or .docx)")
	evaluateCmd.Flags().StringP("job", "J", "", "job description file")
	evaluateCmd.Flags().String("job-text", "", "job description text, used when --job is not set")
	evaluateCmd.Flags().StringP("tier", "t", string(evaluator.TierCorpus), "recommendation tier: corpus or free")
	evaluateCmd.MarkFlagRequired("resume")
}
