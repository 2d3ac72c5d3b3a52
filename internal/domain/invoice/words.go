package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords renders a non-negative rupee amount in English words using the
// Indian grouping scale (crore/lakh/thousand/hundred), with a paise clause for
// any fractional part: "One Lakh Twenty Three Rupees and Forty Five Paise".
func AmountInWords(amount decimal.Decimal) string {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	amount = amount.Round(2)

	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(hundred).IntPart()

	var b strings.Builder
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(intToWords(rupees))
	}
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(intToWords(paise))
		b.WriteString(" Paise")
	}
	return b.String()
}

// intToWords converts a positive integer using crore/lakh/thousand/hundred
// grouping. Recursion bottoms out below twenty.
func intToWords(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		return join(tensWords[n/10], intToWords(n%10))
	case n < 1000:
		return join(onesWords[n/100]+" Hundred", intToWords(n%100))
	case n < 100000:
		return join(intToWords(n/1000)+" Thousand", intToWords(n%1000))
	case n < 10000000:
		return join(intToWords(n/100000)+" Lakh", intToWords(n%100000))
	default:
		return join(intToWords(n/10000000)+" Crore", intToWords(n%10000000))
	}
}

func join(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + " " + tail
}
