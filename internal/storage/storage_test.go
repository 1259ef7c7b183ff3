package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func testRecord(t *testing.T) Record {
	t.Helper()

	rec, err := NewRecord(map[string]int{"total_score": 72})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	rec.CacheKey = "22yv"
	rec.ResumeText = "Jane Doe"
	rec.JobDescription = "Frontend engineer"
	rec.TotalScore = 72
	rec.Summary = "Good match with room for improvement."
	rec.EvaluatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return rec
}

func TestNewRecord(t *testing.T) {
	rec := testRecord(t)

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", rec.ID)
	}
	if string(rec.Payload) != `{"total_score":72}` {
		t.Fatalf("unexpected payload %s", rec.Payload)
	}

	if _, err := NewRecord(func() {}); err == nil {
		t.Fatal("expected error for unencodable payload")
	}
}

func TestFileSinkAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "evaluations.jsonl")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	for range 2 {
		if err := sink.Save(context.Background(), testRecord(t)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not a record: %v", lines, err)
		}
		if rec.CacheKey != "22yv" || rec.TotalScore != 72 {
			t.Fatalf("unexpected record %+v", rec)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}

	if err := sink.Save(context.Background(), testRecord(t)); err == nil {
		t.Fatal("expected error after close")
	}
}

func TestFileSinkHonoursContext(t *testing.T) {
	sink, err := NewFileSink(filepath.Join(t.TempDir(), "e.jsonl"))
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sink.Save(ctx, testRecord(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPostgresSinkSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	rec := testRecord(t)
	mock.ExpectExec("INSERT INTO evaluations").
		WithArgs(rec.ID, rec.CacheKey, rec.ResumeText, rec.JobDescription, rec.TotalScore, rec.Summary, rec.EvaluatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	sink := &PostgresSink{DB: db}
	if err := sink.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresSinkWrapsErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO evaluations").WillReturnError(boom)

	err = (&PostgresSink{DB: db}).Save(context.Background(), testRecord(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migrations")
	}
}
