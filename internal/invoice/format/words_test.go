package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name  string
		minor int64
		want  string
	}{
		{"zero", 0, "Zero Rupees"},
		{"paise only", 50, "Zero Rupees and Fifty Paise"},
		{"single rupee", 100, "One Rupees"},
		{"teens", 1900, "Nineteen Rupees"},
		{"tens with units", 4200, "Forty Two Rupees"},
		{"hundreds", 50075, "Five Hundred Rupees and Seventy Five Paise"},
		{"thousands", 123456, "One Thousand Two Hundred Thirty Four Rupees and Fifty Six Paise"},
		{
			"indian grouping not western",
			15007550,
			"One Lakh Fifty Thousand Seventy Five Rupees and Fifty Paise",
		},
		{"lakh boundary", 10000000, "One Lakh Rupees"},
		{
			"crore",
			1234567890,
			"One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees and Ninety Paise",
		},
		{"negative", -100, "Minus One Rupees"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AmountInWords(tc.minor))
		})
	}
}
