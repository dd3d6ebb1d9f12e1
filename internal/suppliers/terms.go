package suppliers

import (
	"strconv"
	"strings"
	"unicode"
)

const defaultTermsDays = 30

// TermsDays converts a free-text payment terms string to a number of
// days. "contado" and cash-on-delivery mean immediate payment; "Net 30"
// or "60 dias" yield the embedded number; anything unrecognized falls
// back to 30 days.
func TermsDays(terms string) int {
	t := strings.ToLower(strings.TrimSpace(terms))
	if t == "" {
		return defaultTermsDays
	}
	switch t {
	case "contado", "cod", "contra entrega":
		return 0
	}
	if n, ok := firstNumber(t); ok {
		return n
	}
	return defaultTermsDays
}

func firstNumber(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}
