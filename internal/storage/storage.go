// Package storage persists finished evaluations. Persistence is best effort:
// callers log a failed Save and carry on.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DriverNone     = "none"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Record is one persisted evaluation together with the texts it was computed
// from. Payload holds the full result as JSON.
type Record struct {
	ID             string          `json:"id"`
	CacheKey       string          `json:"cache_key"`
	ResumeText     string          `json:"resume_text"`
	JobDescription string          `json:"job_description"`
	TotalScore     int             `json:"total_score"`
	Summary        string          `json:"summary"`
	EvaluatedAt    time.Time       `json:"evaluated_at"`
	Payload        json.RawMessage `json:"payload"`
}

// NewRecord assigns a fresh id and encodes result as the payload. The caller
// fills in the remaining fields.
func NewRecord(result any) (Record, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return Record{}, fmt.Errorf("encode evaluation payload: %w", err)
	}

	return Record{ID: uuid.NewString(), Payload: payload}, nil
}

type Sink interface {
	Save(ctx context.Context, rec Record) error
	Close() error
}

// Config selects and configures a sink.
type Config struct {
	Driver          string `mapstructure:"driver"`
	File            string `mapstructure:"file"`
	DatabaseURLFile string `mapstructure:"database-url-file"`
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Save(context.Context, Record) error { return nil }

func (NopSink) Close() error { return nil }
