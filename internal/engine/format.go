package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DisplayDigits is the maximum number of fractional digits shown for a
// converted value.
const DisplayDigits = 6

// Formula renders "{value} {from} = {converted} {to}".
func Formula(req Request, converted float64) string {
	return fmt.Sprintf("%s %s = %s %s", FormatNumber(req.Value), req.From, FormatValue(converted), req.To)
}

// FormatValue rounds v to at most DisplayDigits fractional digits and drops
// trailing zeros. No digit grouping is applied. Only for display: stored and
// chained values keep full precision.
func FormatValue(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	s := trimFraction(strconv.FormatFloat(v, 'f', DisplayDigits, 64))
	if s == "-0" {
		return "0"
	}
	return s
}

// FormatNumber renders v with the shortest representation that round-trips,
// switching to exponent form outside [1e-6, 1e21) like a browser does.
func FormatNumber(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return compactExponent(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSpecial(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	}
	return "", false
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// compactExponent turns "1.5e-07" into "1.5e-7".
func compactExponent(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}
