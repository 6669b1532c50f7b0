// Package parser turns raw user input into conversion values.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/starford/metron/internal/apperr"
)

// numberPrefixRe matches the longest decimal literal at the start of a string.
var numberPrefixRe = regexp.MustCompile(`^[+-]?(?:Infinity|\d+\.?\d*(?:[eE][+-]?\d+)?|\.\d+(?:[eE][+-]?\d+)?)`)

// ParseValue reads the leading number of s the way a browser's parseFloat
// does: leading whitespace is skipped and trailing garbage ignored.
// Input without a numeric prefix, or whose value is not finite, yields 0.
func ParseValue(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	lit := numberPrefixRe.FindString(s)
	if lit == "" {
		return 0
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil || !isFinite(v) {
		return 0
	}
	return v
}

// ParseStrict parses s as a whole. Surrounding whitespace is allowed; anything
// else that is not a finite decimal number is rejected.
func ParseStrict(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", apperr.ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", apperr.ErrInvalidInput, s)
	}
	if !isFinite(v) {
		return 0, fmt.Errorf("%w: %q is not finite", apperr.ErrInvalidInput, s)
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
