// Package amount parses user-entered amount strings into numeric values.
// Amounts may carry a shorthand suffix commonly used in Indian and western
// notation: "1.5k" is 1500, "2cr" is 20000000.
package amount

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// suffixes maps shorthand suffixes to their multipliers. The two-letter
// "cr" must be matched before the single-letter suffixes.
var suffixes = []struct {
	suffix     string
	multiplier float64
}{
	{"cr", 1e7},
	{"h", 100},
	{"k", 1e3},
	{"l", 1e5},
	{"m", 1e6},
	{"b", 1e9},
}

// Normalize converts an amount string into its numeric value. Currency
// symbols and thousands separators are stripped, then a case-insensitive
// shorthand suffix (h, k, l, cr, m, b) scales the numeric prefix.
// Input that does not contain a parseable number yields an error; the
// result is always a finite float64.
func Normalize(s string) (float64, error) {
	cleaned := clean(s)
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}

	lower := strings.ToLower(cleaned)
	for _, entry := range suffixes {
		if !strings.HasSuffix(lower, entry.suffix) {
			continue
		}
		prefix := cleaned[:len(cleaned)-len(entry.suffix)]
		value, err := strconv.ParseFloat(strings.TrimSpace(prefix), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		return checkFinite(value*entry.multiplier, s)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return checkFinite(value, s)
}

// clean strips currency symbols and thousands separators.
func clean(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer("$", "", "₹", "", ",", "")
	return replacer.Replace(s)
}

func checkFinite(v float64, original string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not a finite number", original)
	}
	return v, nil
}
