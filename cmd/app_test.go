package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/headhunter"
	"github.com/spigell/jobstir/internal/jobs"
	"github.com/spigell/jobstir/internal/storage"
)

func TestNewCorpus(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CorpusConfig
		want    string
		wantErr bool
	}{
		{name: "disabled", cfg: CorpusConfig{}},
		{name: "file", cfg: CorpusConfig{Source: "File", File: "jobs.yaml"}, want: "file"},
		{name: "file without path", cfg: CorpusConfig{Source: "file"}, wantErr: true},
		{
			name: "headhunter",
			cfg:  CorpusConfig{Source: "headhunter", Headhunter: &headhunter.Config{Search: &headhunter.SearchParams{Text: "golang"}}},
			want: "headhunter",
		},
		{name: "headhunter without search", cfg: CorpusConfig{Source: "headhunter"}, wantErr: true},
		{name: "unknown", cfg: CorpusConfig{Source: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newCorpus(tt.cfg, nil, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch p.(type) {
			case nil:
				if tt.want != "" {
					t.Fatalf("expected %s provider, got nil", tt.want)
				}
			case *jobs.FileProvider:
				if tt.want != "file" {
					t.Fatalf("unexpected file provider")
				}
			case *headhunter.Client:
				if tt.want != "headhunter" {
					t.Fatalf("unexpected headhunter provider")
				}
			}
		})
	}
}

func TestNewHeadhunterDerivesRequirements(t *testing.T) {
	hh, err := newHeadhunter(&headhunter.Config{
		UserAgent: "test-agent",
		Search:    &headhunter.SearchParams{Text: "golang"},
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hh.UserAgent != "test-agent" {
		t.Fatalf("unexpected user agent %q", hh.UserAgent)
	}
	if skills := hh.Requirements("Experience with Docker and Kubernetes"); len(skills) == 0 {
		t.Fatal("expected skills from the description")
	}
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()

	sink, err := newSink(ctx, storage.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(storage.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}

	path := filepath.Join(t.TempDir(), "out.jsonl")
	sink, err = newSink(ctx, storage.Config{Driver: storage.DriverFile, File: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sink.Close()
	if fs, ok := sink.(*storage.FileSink); !ok || fs.Path() != path {
		t.Fatalf("expected file sink at %s, got %T", path, sink)
	}

	if _, err := newSink(ctx, storage.Config{Driver: "mongo"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}

	// postgres needs a database url
	t.Setenv("JOBSTIR_DATABASE_URL", "")
	if _, err := newSink(ctx, storage.Config{Driver: storage.DriverPostgres}, zap.NewNop()); err == nil {
		t.Fatal("expected error without database url")
	}
}

func TestNewApplication(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "jobs.yaml")
	if err := os.WriteFile(corpus, []byte(`
jobs:
  - id: go-1
    title: Backend Developer
    company: Acme
    description: Build services with Docker and Kubernetes
    requirements: [go, docker, kubernetes]
    status: active
`), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	a, err := newApplication(context.Background(), &Config{
		Corpus:  CorpusConfig{Source: corpusSourceFile, File: corpus},
		Storage: storage.Config{Driver: storage.DriverFile, File: filepath.Join(dir, "evaluations.jsonl")},
		AI:      &AIConfig{Enabled: true, Provider: "openai"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.close()

	recs, err := a.evaluator.Recommend(context.Background(), "Senior Backend Developer 2016 - 2024\n- Golang, Docker, Kubernetes", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].JobID != "go-1" {
		t.Fatalf("unexpected recommendations %+v", recs)
	}

	if _, err := newApplication(context.Background(), &Config{Dictionary: filepath.Join(dir, "missing.yaml")}, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing dictionary")
	}
}
