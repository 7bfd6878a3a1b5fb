package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{"returns empty when limit non-positive", "hello world", 0, ""},
		{"shorter than limit", "hello", 10, "hello"},
		{"truncates and adds ellipsis", "hello world", 5, "hello..."},
		{"counts runes not bytes", "résumé review", 6, "résumé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}
