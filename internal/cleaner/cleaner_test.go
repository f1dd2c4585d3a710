package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLlmResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "no fences",
			response: `  {"match_score": 85}  `,
			want:     `{"match_score": 85}`,
		},
		{
			name:     "json fence",
			response: "```json\n{\"match_score\": 85}\n```",
			want:     `{"match_score": 85}`,
		},
		{
			name:     "generic fence",
			response: "```\n{\"a\": 1}\n```",
			want:     `{"a": 1}`,
		},
		{
			name:     "fence with surrounding prose",
			response: "Here you go:\n```json\n{\"a\": 1}\n```\nEnjoy!",
			want:     `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLlmResponse(tt.response))
		})
	}
}
