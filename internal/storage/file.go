package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const defaultFile = "evaluations.jsonl"

// FileSink appends records to a JSON lines file.
type FileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	if path = strings.TrimSpace(path); path == "" {
		path = defaultFile
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %q: %w", path, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open evaluations file %q: %w", path, err)
	}

	return &FileSink{path: path, file: file}, nil
}

func (s *FileSink) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("file sink is closed")
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("write record to %q: %w", s.path, err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *FileSink) Path() string {
	return s.path
}
