package model

import "strings"

// cuitWeights are the mod-11 weights for the CUIT check digit.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// NormalizeCUIT strips every non-digit character (dashes, dots, spaces)
// from a tax id.
func NormalizeCUIT(cuit string) string {
	var b strings.Builder
	for _, r := range cuit {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCUIT reports whether the normalized tax id is 11 digits with a
// correct mod-11 check digit.
func ValidCUIT(cuit string) bool {
	s := NormalizeCUIT(cuit)
	if len(s) != 11 {
		return false
	}
	sum := 0
	for i, w := range cuitWeights {
		sum += int(s[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		check = 9
	}
	return check == int(s[10]-'0')
}
