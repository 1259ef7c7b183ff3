package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/extract"
)

// manifest lists the pairs evaluated by the batch command. Texts can be given
// inline or as files relative to the manifest.
type manifest struct {
	Requests []manifestEntry `yaml:"requests"`
}

type manifestEntry struct {
	evaluator.Request `yaml:",inline"`

	ResumeFile         string `yaml:"resume_file"`
	JobDescriptionFile string `yaml:"job_description_file"`
}

type batchLine struct {
	Index  int               `json:"index"`
	Result *evaluator.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Evaluate every pair of a manifest and print one JSON line per pair",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, logger := setup()

		if err := batch(cmd, args[0], config, logger); err != nil {
			logger.Fatal("evaluating the batch", zap.Error(err))
		}
	},
}

func batch(cmd *cobra.Command, manifestPath string, config *Config, logger *zap.Logger) error {
	ctx := cmd.Context()

	reqs, err := loadManifest(ctx, manifestPath)
	if err != nil {
		return fmt.Errorf("reading the manifest: %w", err)
	}

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("building the evaluator: %w", err)
	}
	defer a.close()

	return writeOutcomes(cmd.OutOrStdout(), a.evaluator.EvaluateBatch(ctx, reqs))
}

func writeOutcomes(w io.Writer, outcomes []evaluator.Outcome) error {
	enc := json.NewEncoder(w)
	for _, o := range outcomes {
		line := batchLine{Index: o.Index, Result: o.Result}
		if o.Err != nil {
			line.Error = o.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("writing the result: %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

func loadManifest(ctx context.Context, path string) ([]evaluator.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %q: %w", path, err)
	}
	if len(m.Requests) == 0 {
		return nil, fmt.Errorf("manifest %q has no requests", path)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	reqs := make([]evaluator.Request, 0, len(m.Requests))
	for i, entry := range m.Requests {
		req := entry.Request
		if entry.ResumeFile != "" {
			if req.ResumeText, err = extract.Load(ctx, resolve(entry.ResumeFile)); err != nil {
				return nil, fmt.Errorf("request %d: %w", i, err)
			}
		}
		if entry.JobDescriptionFile != "" {
			if req.JobDescription, err = extract.Load(ctx, resolve(entry.JobDescriptionFile)); err != nil {
				return nil, fmt.Errorf("request %d: %w", i, err)
			}
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}
