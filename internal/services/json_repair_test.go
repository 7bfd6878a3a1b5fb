package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "plain object",
			raw:  `{"summary": "ok"}`,
			want: map[string]any{"summary": "ok"},
		},
		{
			name: "fenced with prose",
			raw:  "Here it is:\n```json\n{\"match_percentage\": 55}\n```\nThanks!",
			want: map[string]any{"match_percentage": 55.0},
		},
		{
			name: "smart quotes",
			raw:  `{“summary”: “fine”}`,
			want: map[string]any{"summary": "fine"},
		},
		{
			name: "raw newline inside string",
			raw:  "{\"summary\": \"line one\nline two\"}",
			want: map[string]any{"summary": "line one line two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModelJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModelJSONErrors(t *testing.T) {
	_, err := parseModelJSON("no braces here")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = parseModelJSON("} backwards {")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = parseModelJSON(`{"a": [1, 2}`)
	assert.ErrorIs(t, err, ErrUnparseableJSON)
}

func TestBraceSpanIsGreedy(t *testing.T) {
	span, ok := braceSpan(`x {"a": {"b": 1}} y {"c": 2} z`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}} y {"c": 2}`, span)
}
