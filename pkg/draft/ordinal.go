package draft

import "strconv"

var ordinals = [...]string{
	"", "1st", "2nd", "3rd", "4th", "5th", "6th",
	"7th", "8th", "9th", "10th", "11th", "12th",
}

// Ordinal renders n as an English ordinal ("1st", "22nd", "113th"). Values
// past the roster-sized table follow the suffix rule, where 11, 12 and 13
// always take "th".
func Ordinal(n int) string {
	if n >= 1 && n < len(ordinals) {
		return ordinals[n]
	}

	abs := n
	if abs < 0 {
		abs = -abs
	}
	suffix := "th"
	if abs%100 < 11 || abs%100 > 13 {
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
