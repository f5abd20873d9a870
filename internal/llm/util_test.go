package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"tool":"none"}`,
			expected: `{"tool":"none"}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"tool\":\"none\"}\n```",
			expected: `{"tool":"none"}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"tool\":\"none\"}\n```",
			expected: `{"tool":"none"}`,
		},
		{
			name:     "fence with language tag",
			input:    "```js\n{\"tool\":\"none\"}\n```",
			expected: `{"tool":"none"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\":1}\n  ",
			expected: `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
