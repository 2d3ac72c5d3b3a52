package invoice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{"first invoice for a new user", "CI", "", "CI-001"},
		{"increments trailing digits", "CI", "CI-007", "CI-008"},
		{"rolls past padding width", "CI", "CI-099", "CI-100"},
		{"grows beyond three digits", "CI", "CI-999", "CI-1000"},
		{"ignores digits elsewhere in the number", "CI", "CI2-007", "CI-008"},
		{"no digits at all starts over", "CI", "CI-draft", "CI-001"},
		{"different prefix", "ES", "ES-041", "ES-042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NextNumber(tt.prefix, tt.last))
		})
	}
}
