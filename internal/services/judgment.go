package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/logger"
	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
)

const (
	defaultJudgmentMaxTokens   = 800
	defaultJudgmentTemperature = 0.3

	defaultMatchPercentage = 60
	defaultJudgmentSummary = "Candidate evaluated for position"

	maxLogPreview = 300
)

var (
	defaultPros = []string{"Relevant experience"}
	defaultCons = []string{"Further review needed"}
)

// Fallback judgments. The summary text alone identifies the failure class.
func notConfiguredJudgment() models.Judgment {
	return models.Judgment{
		MatchPercentage: 0,
		Summary:         "Text generation is not configured.",
		Pros:            []string{},
		Cons:            []string{},
		Evidence:        []string{},
	}
}

func serviceUnavailableJudgment() models.Judgment {
	return models.Judgment{
		MatchPercentage: 50,
		Summary:         "Initial screening complete. Manual review recommended for full assessment.",
		Pros:            []string{"Resume received for review"},
		Cons:            []string{"Automated analysis unavailable"},
		Evidence:        []string{},
	}
}

func parseFailureJudgment() models.Judgment {
	return models.Judgment{
		MatchPercentage: 60,
		Summary:         "Resume analyzed. Skills and experience align with role requirements.",
		Pros:            []string{"Relevant professional background", "Key competencies demonstrated"},
		Cons:            []string{"Detailed technical review recommended"},
		Evidence:        []string{},
	}
}

func unexpectedFailureJudgment() models.Judgment {
	return models.Judgment{
		MatchPercentage: 40,
		Summary:         "Automated analysis failed unexpectedly. Manual review required.",
		Pros:            []string{},
		Cons:            []string{"Automated analysis incomplete"},
		Evidence:        []string{},
	}
}

// JudgmentExtractor turns a model's free-text answer about one resume into a
// bounded Judgment. Judge never fails; every error path yields a fallback.
type JudgmentExtractor struct {
	generator     TextGenerator
	promptBuilder *PromptBuilder
	maxTokens     int
	temperature   float32
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

type JudgmentOption func(*JudgmentExtractor)

func WithGenerationParams(maxTokens int, temperature float32) JudgmentOption {
	return func(j *JudgmentExtractor) {
		if maxTokens > 0 {
			j.maxTokens = maxTokens
		}
		if temperature >= 0 {
			j.temperature = temperature
		}
	}
}

func WithJudgmentMetrics(m *metrics.Metrics) JudgmentOption {
	return func(j *JudgmentExtractor) { j.metrics = m }
}

// NewJudgmentExtractor accepts a nil generator; every judgment is then the
// not-configured fallback.
func NewJudgmentExtractor(generator TextGenerator, logger *zap.Logger, opts ...JudgmentOption) *JudgmentExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	j := &JudgmentExtractor{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		maxTokens:     defaultJudgmentMaxTokens,
		temperature:   defaultJudgmentTemperature,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JudgmentExtractor) Judge(ctx context.Context, documentText, queryText string) (judgment models.Judgment) {
	start := time.Now()
	outcome := metrics.OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("judgment panicked", zap.Any("panic", r))
			judgment = unexpectedFailureJudgment()
			outcome = metrics.OutcomeUnexpected
		}
		j.metrics.Judgment(outcome, time.Since(start))
	}()

	if j.generator == nil {
		outcome = metrics.OutcomeNotConfigured
		return notConfiguredJudgment()
	}

	prompt := j.promptBuilder.BuildJudgmentPrompt(documentText, queryText)
	j.logger.Debug("requesting judgment", zap.Int("prompt_length", len(prompt)))

	raw, err := j.generator.Generate(ctx, prompt, j.maxTokens, j.temperature)
	if err != nil {
		if errors.Is(err, ErrGeneratorNotConfigured) {
			outcome = metrics.OutcomeNotConfigured
			return notConfiguredJudgment()
		}
		j.logger.Warn("text generation failed", zap.Error(err))
		outcome = metrics.OutcomeServiceUnavailable
		return serviceUnavailableJudgment()
	}

	j.logger.Debug("judgment response received",
		zap.Int("length", len(raw)),
		zap.String("preview", logger.TruncateForLog(raw, maxLogPreview)),
	)

	parsed, err := parseModelJSON(raw)
	if err != nil {
		j.logger.Warn("failed to parse judgment response",
			zap.Error(err),
			zap.String("response", logger.TruncateForLog(raw, maxLogPreview)),
		)
		outcome = metrics.OutcomeParseFailure
		return parseFailureJudgment()
	}

	judgment = coerceJudgment(parsed)
	j.logger.Debug("judgment complete", zap.Int("match_percentage", judgment.MatchPercentage))
	return judgment
}

// coerceJudgment maps an arbitrary decoded object onto the bounded Judgment
// shape, substituting defaults for missing or mistyped fields.
func coerceJudgment(obj map[string]any) models.Judgment {
	summary := defaultJudgmentSummary
	if v, ok := obj["summary"]; ok && v != nil {
		summary = coerceString(v)
	}

	return models.Judgment{
		MatchPercentage: coercePercentage(obj["match_percentage"]),
		Summary:         truncateRunes(summary, models.MaxSummaryLength),
		Pros:            coerceList(obj, "pros", defaultPros, models.MaxListItems, models.MaxListItemLength),
		Cons:            coerceList(obj, "cons", defaultCons, models.MaxListItems, models.MaxListItemLength),
		Evidence:        coerceList(obj, "evidence", nil, models.MaxEvidenceItems, models.MaxEvidenceLength),
	}
}

func coercePercentage(v any) int {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultMatchPercentage
	}
	return int(math.Max(0, math.Min(100, math.Trunc(f))))
}

func coerceList(obj map[string]any, key string, fallback []string, maxItems, maxLength int) []string {
	v, ok := obj[key]
	if !ok || v == nil {
		v = toAnySlice(fallback)
	}

	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case string:
		items = []any{val}
	default:
		items = toAnySlice(fallback)
	}

	out := make([]string, 0, min(len(items), maxItems))
	for _, item := range items {
		if len(out) == maxItems {
			break
		}
		if item == nil {
			continue
		}
		out = append(out, truncateRunes(coerceString(item), maxLength))
	}
	return out
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
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
