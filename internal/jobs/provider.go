package jobs

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider reads the corpus from a YAML or JSON file on every call, so
// edits are picked up without a restart.
type FileProvider struct {
	Path string
}

type corpusFile struct {
	Jobs []*Posting `yaml:"jobs"`
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (f *FileProvider) Postings(_ context.Context) (*Postings, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	return ParseCorpus(data)
}

// ParseCorpus decodes a document with a top level "jobs" list. JSON documents
// are accepted as well since they are valid YAML.
func ParseCorpus(data []byte) (*Postings, error) {
	var corpus corpusFile
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	for i, posting := range corpus.Jobs {
		if posting == nil || posting.ID == "" {
			return nil, fmt.Errorf("corpus entry %d has no id", i)
		}
	}

	return &Postings{Items: corpus.Jobs}, nil
}

// Static serves a fixed list of postings. Each call returns a fresh collection
// so callers can filter it in place.
type Static []*Posting

func (s Static) Postings(_ context.Context) (*Postings, error) {
	items := make([]*Posting, 0, len(s))
	for _, p := range s {
		clone := *p
		clone.Requirements = append([]string(nil), p.Requirements...)
		items = append(items, &clone)
	}
	return &Postings{Items: items}, nil
}
