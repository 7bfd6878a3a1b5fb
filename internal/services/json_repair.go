package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoJSON means the model response had no {...} span at all.
	ErrNoJSON = errors.New("no JSON object in response")
	// ErrUnparseableJSON means every repair strategy failed to produce valid JSON.
	ErrUnparseableJSON = errors.New("unparseable JSON in response")
)

// jsonRepair rewrites a candidate JSON span before a parse attempt.
type jsonRepair struct {
	name  string
	apply func(string) string
}

// jsonRepairs run in order; the first one whose output parses wins.
var jsonRepairs = []jsonRepair{
	{name: "as-is", apply: func(s string) string { return s }},
	{name: "normalize-quotes", apply: normalizeQuotes},
}

var quoteReplacer = strings.NewReplacer(
	"'", `"`,
	"‘", `"`,
	"’", `"`,
	"“", `"`,
	"”", `"`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// parseModelJSON extracts a JSON object from free model output.
func parseModelJSON(raw string) (map[string]any, error) {
	span, ok := braceSpan(stripCodeFences(raw))
	if !ok {
		return nil, ErrNoJSON
	}

	var lastErr error
	for _, repair := range jsonRepairs {
		var obj map[string]any
		if err := json.Unmarshal([]byte(repair.apply(span)), &obj); err != nil {
			lastErr = fmt.Errorf("%s: %w", repair.name, err)
			continue
		}
		if obj == nil {
			lastErr = fmt.Errorf("%s: null object", repair.name)
			continue
		}
		return obj, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrUnparseableJSON, lastErr)
}

func stripCodeFences(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```JSON", "")
	raw = strings.ReplaceAll(raw, "```", "")
	return strings.TrimSpace(raw)
}

// braceSpan returns the text from the first '{' to the last '}' inclusive.
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func normalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}
