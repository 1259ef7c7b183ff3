package evaluator

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/resume"
)

// parseResume runs the parser in a worker goroutine bounded by the worker
// timeout. A timed out worker is retried once in the calling goroutine.
func (e *Evaluator) parseResume(ctx context.Context, text string) (*resume.Resume, error) {
	parsed, err := e.parseInWorker(ctx, text)
	if err == nil {
		return parsed, nil
	}

	var timeout *WorkerTimeoutError
	if !errors.As(err, &timeout) {
		return nil, err
	}

	e.logger.Warn("resume parser worker timed out, retrying in process",
		zap.Duration("timeout", timeout.Timeout),
		zap.Error(err),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.parse(text), nil
}

func (e *Evaluator) parseInWorker(ctx context.Context, text string) (*resume.Resume, error) {
	workerCtx, cancel := context.WithTimeout(ctx, e.cfg.WorkerTimeout)
	defer cancel()

	// the worker owns its copy of the input
	input := strings.Clone(text)
	done := make(chan *resume.Resume, 1)
	go func() {
		done <- e.parse(input)
	}()

	select {
	case parsed := <-done:
		return parsed, nil
	case <-workerCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &WorkerTimeoutError{Timeout: e.cfg.WorkerTimeout}
	}
}
