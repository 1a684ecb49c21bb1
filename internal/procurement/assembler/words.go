package assembler

var onesWords = []string{
	"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords spells a non-negative rupee amount using Indian numbering
// (hundred, thousand, lakh, crore). The "and" joiner appears only between a
// hundreds segment and its remainder: 26904 is "Twenty Six Thousand Nine
// Hundred and Four".
func AmountInWords(n int64) string {
	if n < 0 {
		return ""
	}
	if n == 0 {
		return "Zero"
	}
	return words(n)
}

func words(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		s := tensWords[n/10]
		if n%10 != 0 {
			s += " " + onesWords[n%10]
		}
		return s
	case n < 1_000:
		s := onesWords[n/100] + " Hundred"
		if n%100 != 0 {
			s += " and " + words(n%100)
		}
		return s
	case n < 100_000:
		s := words(n/1_000) + " Thousand"
		if n%1_000 != 0 {
			s += " " + words(n%1_000)
		}
		return s
	case n < 10_000_000:
		s := words(n/100_000) + " Lakh"
		if n%100_000 != 0 {
			s += " " + words(n%100_000)
		}
		return s
	default:
		s := words(n/10_000_000) + " Crore"
		if n%10_000_000 != 0 {
			s += " " + words(n%10_000_000)
		}
		return s
	}
}
