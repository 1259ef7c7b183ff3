package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/extract"
	"github.com/spigell/jobstir/internal/jobs"
	"github.com/spigell/jobstir/internal/matching"
)

const (
	PromptShow                = "Show recommendations"
	PromptReportByCompany     = "Report by company"
	PromptVacanciesToFile     = "Dump recommended jobs to file"
	PromptAppendToExcludeFile = "Append recommended jobs to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the job corpus against a resume",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("resume", "r", "", "resume file (.txt, .md, .pdf or .docx)")
	rankCmd.Flags().IntP("limit", "l", matching.CorpusLimit, "maximum number of recommendations")
	rankCmd.Flags().BoolP("auto-aprove", "y", false, "print the recommendations and exit without asking")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	rankCmd.MarkFlagRequired("resume")

	viper.BindPFlag("filters.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
}

// ranking is the state of an interactive rank session.
type ranking struct {
	recs        []matching.Recommendation
	postings    *jobs.Postings
	excludeFile string
	out         io.Writer
	logger      *zap.Logger
	now         func() time.Time
}

func rank(cmd *cobra.Command) {
	config, logger := setup()
	ctx := cmd.Context()

	text, err := extract.Load(ctx, cmd.Flag("resume").Value.String())
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err))
	}

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the evaluator", zap.Error(err))
	}
	defer a.close()

	if a.corpus == nil {
		logger.Fatal("job corpus is required", zap.String("hint", "set corpus.source to file or headhunter"))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := a.evaluator.Recommend(ctx, text, limit)
	if err != nil {
		logger.Fatal("ranking the job corpus", zap.Error(err))
	}

	if len(recs) == 0 {
		logger.Info("exiting", zap.String("reason", "no matching jobs found"))
		return
	}

	postings, err := recommendedPostings(ctx, a.corpus, recs)
	if err != nil {
		logger.Fatal("loading recommended jobs", zap.Error(err))
	}

	r := &ranking{
		recs:        recs,
		postings:    postings,
		excludeFile: config.Filters.ExcludeFile,
		out:         cmd.OutOrStdout(),
		logger:      logger,
		now:         time.Now,
	}

	if auto, _ := cmd.Flags().GetBool("auto-aprove"); auto {
		r.show()
		return
	}

	for {
		items := []string{PromptShow, PromptReportByCompany, PromptVacanciesToFile}
		if r.excludeFile != "" && r.postings.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		prompt := promptui.Select{
			Label: "Procced?",
			Items: append(items, PromptExit),
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of recommendations", zap.Int("count", len(r.recs)))

		if err := r.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (r *ranking) handleAction(action string) error {
	switch action {
	case PromptShow:
		r.show()
		return nil
	case PromptExit:
		r.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(r.postings.ReportByCompany(), "", "  ")
		r.logger.Info(string(pretty), zap.Int("jobs count", r.postings.Len()))
		return nil
	case PromptVacanciesToFile:
		filename, err := r.postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		r.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return r.appendToExcludeFile()
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (r *ranking) appendToExcludeFile() error {
	if r.excludeFile == "" {
		return errors.New("exclude file is not configured")
	}

	excluded, err := jobs.LoadExcluded(r.excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(r.postings.ToExcluded(r.now()))

	if err := excluded.ToFile(r.excludeFile); err != nil {
		return err
	}

	r.logger.Info("appended to exclude file", zap.String("filename", r.excludeFile))

	ids := excluded.IDs()
	r.postings.Exclude(jobs.PostingIDField, ids)
	r.recs = slices.DeleteFunc(r.recs, func(rec matching.Recommendation) bool {
		return slices.Contains(ids, rec.JobID)
	})

	return nil
}

func (r *ranking) show() {
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tTITLE\tCOMPANY\tURL")
	for _, rec := range r.recs {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\n", rec.SimilarityScore, rec.JobID, rec.Title, rec.Company, rec.URL)
	}
	w.Flush()
}

// recommendedPostings returns the corpus postings behind recs, in ranking order.
func recommendedPostings(ctx context.Context, corpus jobs.Provider, recs []matching.Recommendation) (*jobs.Postings, error) {
	all, err := corpus.Postings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading job corpus: %w", err)
	}

	selected := &jobs.Postings{Items: make([]*jobs.Posting, 0, len(recs))}
	for _, rec := range recs {
		if p := all.FindByID(rec.JobID); p != nil {
			selected.Items = append(selected.Items, p)
		}
	}
	return selected, nil
}
