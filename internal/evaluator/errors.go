package evaluator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoCorpus is returned by Recommend when no job corpus is configured.
	ErrNoCorpus = errors.New("job corpus is not configured")
)

// ValidationError rejects a request before any processing. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WorkerTimeoutError reports a parser worker that did not finish in time.
type WorkerTimeoutError struct {
	Timeout time.Duration
}

func (e *WorkerTimeoutError) Error() string {
	return fmt.Sprintf("resume parser worker timed out after %s", e.Timeout)
}

// Temporary marks the error as retryable.
func (e *WorkerTimeoutError) Temporary() bool {
	return true
}
