package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
)

const defaultPingTimeout = 5 * time.Second

//go:embed migrations/*.sql
var migrationFiles embed.FS

var openDB = sql.Open

// Connect opens a pgx backed *sql.DB and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// PostgresSink stores records in the evaluations table.
type PostgresSink struct {
	DB *sql.DB
}

func (s *PostgresSink) Save(ctx context.Context, rec Record) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO evaluations (id, cache_key, resume_text, job_description, total_score, summary, evaluated_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		rec.CacheKey,
		rec.ResumeText,
		rec.JobDescription,
		rec.TotalScore,
		rec.Summary,
		rec.EvaluatedAt.UTC(),
		[]byte(rec.Payload),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
