package program

import "strings"

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// RomanNumeral encodes n as a subtractive Roman numeral. Cohorts are
// displayed this way ("Cohort XLVI"). Returns "" for n < 1.
func RomanNumeral(n int) string {
	if n < 1 {
		return ""
	}
	var sb strings.Builder
	for _, row := range romanTable {
		for n >= row.value {
			sb.WriteString(row.symbol)
			n -= row.value
		}
	}
	return sb.String()
}
