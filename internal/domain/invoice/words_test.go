package invoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Rupees"},
		{"1", "One Rupees"},
		{"19", "Nineteen Rupees"},
		{"42", "Forty Two Rupees"},
		{"100", "One Hundred Rupees"},
		{"305", "Three Hundred Five Rupees"},
		{"1000", "One Thousand Rupees"},
		{"1234", "One Thousand Two Hundred Thirty Four Rupees"},
		{"99999", "Ninety Nine Thousand Nine Hundred Ninety Nine Rupees"},
		{"100000", "One Lakh Rupees"},
		{"2350000", "Twenty Three Lakh Fifty Thousand Rupees"},
		{"10000000", "One Crore Rupees"},
		{"12345678", "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees"},
		{"1.50", "One Rupees and Fifty Paise"},
		{"0.05", "Zero Rupees and Five Paise"},
		{"1200.75", "One Thousand Two Hundred Rupees and Seventy Five Paise"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			require.Equal(t, tt.want, AmountInWords(d(tt.amount)))
		})
	}
}

func TestAmountInWordsProperties(t *testing.T) {
	whole := []string{"0", "7", "88", "950", "100001", "99999999"}
	for _, a := range whole {
		got := AmountInWords(d(a))
		require.True(t, strings.HasSuffix(got, "Rupees"), "%s => %q", a, got)
		require.NotContains(t, got, "Paise")
	}

	fractional := []string{"0.01", "12.34", "100000.99"}
	for _, a := range fractional {
		got := AmountInWords(d(a))
		require.Contains(t, got, "Rupees and ")
		require.True(t, strings.HasSuffix(got, "Paise"), "%s => %q", a, got)
	}

	// Negative input is treated as zero rather than producing garbage.
	require.Equal(t, "Zero Rupees", AmountInWords(d("-5")))
}
