package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  cache_key  ", Value: "  22yv  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "cache_key" || fields[0].String != "22yv" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	// the fallback logger must be usable
	WithFields(nil, zap.String("baz", "qux")).Info("another log")
}

func TestWithAIFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithAIFields(zap.New(core), " gemini ", "model-x").Info("review")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "model-x" {
		t.Fatalf("unexpected fields %v", ctx)
	}

	if fields := AIFields("", ""); len(fields) != 0 {
		t.Fatalf("expected empty fields, got %d", len(fields))
	}
}

func TestEvaluationFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	zap.New(core).Info("evaluation finished", EvaluationFields("22yv", 72)...)

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldCacheKey] != "22yv" || ctx[FieldTotalScore] != int64(72) {
		t.Fatalf("unexpected fields %v", ctx)
	}

	if fields := EvaluationFields("", 0); len(fields) != 1 {
		t.Fatalf("expected only the score field, got %d", len(fields))
	}
}

func TestComponent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	Component(zap.New(core), "evaluator").Info("named")

	if got := observed.All()[0].LoggerName; got != "evaluator" {
		t.Fatalf("expected logger name evaluator, got %q", got)
	}

	Component(nil, "noop").Info("must not panic")
}
