package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spigell/jobstir/internal/ai"
	"github.com/spigell/jobstir/internal/logger"
	"github.com/spigell/jobstir/internal/utils"
	"go.uber.org/zap"
)

const (
	provider = "gemini"

	defaultMaxLogLength     = 200
	defaultTone             = "Friendly"
	maxUserInstructionRunes = 500
	maxSuggestions          = 5
	maxInputRunes           = 20000
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// PromptOverrides customise the system prompt. Values are sanitized before use.
type PromptOverrides struct {
	Tone             string
	UserInstructions string
}

type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewReviewer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Reviewer{
		generator: generator,
		logger:    logger.WithAIFields(log, provider, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (r *Reviewer) SetPromptOverrides(o PromptOverrides) {
	r.overrides = o
}

func (r *Reviewer) Review(ctx context.Context, in *ai.ReviewInput) (*ai.Review, error) {
	if in == nil {
		return nil, fmt.Errorf("review input is required")
	}

	payload := *in
	payload.ResumeText = utils.TruncateForLog(payload.ResumeText, maxInputRunes)
	payload.JobDescription = utils.TruncateForLog(payload.JobDescription, maxInputRunes)

	message, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal review input: %w", err)
	}

	system := buildPrompt(r.overrides)

	r.logger.Debug("gemini review request",
		zap.Int("score", in.TotalScore),
		zap.Int("message_length", utf8.RuneCount(message)),
		zap.String("message_preview", utils.TruncateForLog(string(message), r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, system, string(message))
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	review, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	review.Provider = provider
	review.Model = r.generator.Model()
	review.Raw = raw

	return review, nil
}

func buildPrompt(o PromptOverrides) string {
	tone := sanitizeLine(o.Tone)
	if tone == "" {
		tone = defaultTone
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{TONE}}", tone)
	prompt = strings.ReplaceAll(prompt, "{{USER_INSTRUCTIONS}}", sanitizeInstructions(o.UserInstructions))
	return strings.TrimSpace(prompt)
}

// sanitizeLine collapses whitespace and replaces square brackets so user text
// cannot imitate section markers.
func sanitizeLine(s string) string {
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeInstructions(s string) string {
	lines := make([]string, 0)
	budget := maxUserInstructionRunes

	for _, line := range strings.Split(s, "\n") {
		line = sanitizeLine(line)
		if line == "" || budget <= 0 {
			continue
		}
		if runes := []rune(line); len(runes) > budget {
			line = string(runes[:budget])
		}
		budget -= utf8.RuneCountInString(line)
		lines = append(lines, "  - "+line)
	}

	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*ai.Review, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}
	score = math.Max(0, math.Min(score, 1))

	suggestions := coerceStrings(data["suggestions"])
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return &ai.Review{
		Verdict:     strings.ToLower(coerceString(data["verdict"])),
		Score:       score,
		Summary:     coerceString(data["summary"]),
		Suggestions: suggestions,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	out := make([]string, 0)
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}
