// Package format renders invoice display fields.
package format

import "strings"

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords spells a minor-unit amount using the Indian numbering
// grouping (hundred, thousand, lakh, crore), e.g. 15007550 becomes
// "One Lakh Fifty Thousand Seventy Five Rupees and Fifty Paise". It is a
// derived display field, recomputed whenever the invoice total changes,
// never an input.
func AmountInWords(minor int64) string {
	if minor < 0 {
		return "Minus " + AmountInWords(-minor)
	}

	rupees := minor / 100
	paise := minor % 100

	var b strings.Builder
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(numberInWords(rupees))
	}
	b.WriteString(" Rupees")

	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(numberInWords(paise))
		b.WriteString(" Paise")
	}

	return b.String()
}

// numberInWords reduces n one magnitude tier at a time: crore, lakh,
// thousand, hundred, then the two-digit remainder.
func numberInWords(n int64) string {
	switch {
	case n < 20:
		return ones[n]
	case n < 100:
		return join(tens[n/10], ones[n%10])
	case n < 1000:
		return join(numberInWords(n/100)+" Hundred", numberInWords(n%100))
	case n < 100000:
		return join(numberInWords(n/1000)+" Thousand", numberInWords(n%1000))
	case n < 10000000:
		return join(numberInWords(n/100000)+" Lakh", numberInWords(n%100000))
	default:
		return join(numberInWords(n/10000000)+" Crore", numberInWords(n%10000000))
	}
}

func join(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + " " + tail
}
