// Package calculator provides the scientific functions behind the keypad and
// a Keypad state machine that drives them one key at a time.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/starford/metron/internal/apperr"
)

// ErrNegativeFactorial is returned for the factorial of a negative number.
var ErrNegativeFactorial = errors.New("calculator: factorial of a negative number")

// Angle selects how trigonometric functions interpret or report angles.
type Angle int

const (
	Degrees Angle = iota
	Radians
)

// ParseAngle maps "deg"/"degrees" and "rad"/"radians" to an Angle. Empty
// input means Degrees.
func ParseAngle(s string) (Angle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deg", "degree", "degrees":
		return Degrees, nil
	case "rad", "radian", "radians":
		return Radians, nil
	}
	return Degrees, fmt.Errorf("%w: angle mode %q", apperr.ErrInvalidInput, s)
}

func (a Angle) String() string {
	if a == Radians {
		return "rad"
	}
	return "deg"
}

// Binary applies a two-operand operator. Unknown operators return b.
func Binary(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-", "−":
		return a - b
	case "×", "*", "x":
		return a * b
	case "÷", "/":
		return a / b
	case "^":
		return math.Pow(a, b)
	default:
		return b
	}
}

// IsBinary reports whether op is a known binary operator.
func IsBinary(op string) bool {
	switch op {
	case "+", "-", "−", "×", "*", "x", "÷", "/", "^":
		return true
	}
	return false
}

// Functions lists the names accepted by Unary.
var Functions = []string{
	"sin", "cos", "tan", "asin", "acos", "atan",
	"log", "ln", "square", "cube", "exp", "reciprocal",
	"negate", "percent", "factorial",
}

// Unary applies a single-operand function. Trigonometric input and inverse
// trigonometric output follow mode.
func Unary(fn string, x float64, mode Angle) (float64, error) {
	switch fn {
	case "sin":
		return math.Sin(toRadians(x, mode)), nil
	case "cos":
		return math.Cos(toRadians(x, mode)), nil
	case "tan":
		return math.Tan(toRadians(x, mode)), nil
	case "asin":
		return fromRadians(math.Asin(x), mode), nil
	case "acos":
		return fromRadians(math.Acos(x), mode), nil
	case "atan":
		return fromRadians(math.Atan(x), mode), nil
	case "log":
		return math.Log10(x), nil
	case "ln":
		return math.Log(x), nil
	case "square":
		return math.Pow(x, 2), nil
	case "cube":
		return math.Pow(x, 3), nil
	case "exp":
		return math.Exp(x), nil
	case "reciprocal":
		return 1 / x, nil
	case "negate":
		return -x, nil
	case "percent":
		return x / 100, nil
	case "factorial":
		return Factorial(x)
	}
	return 0, fmt.Errorf("%w: unknown function %q", apperr.ErrInvalidInput, fn)
}

// Constant returns pi or e by name.
func Constant(name string) (float64, bool) {
	switch name {
	case "pi", "π":
		return math.Pi, true
	case "e":
		return math.E, true
	}
	return 0, false
}

// maxFactorial is the largest n whose factorial is finite in float64.
const maxFactorial = 170

// Factorial computes n! after truncating x toward zero. NaN yields 1, and
// inputs past 170 overflow to +Inf.
func Factorial(x float64) (float64, error) {
	if math.IsNaN(x) {
		return 1, nil
	}
	n := math.Trunc(x)
	if n < 0 {
		return 0, ErrNegativeFactorial
	}
	if n > maxFactorial {
		return math.Inf(1), nil
	}
	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}
	return result, nil
}

func toRadians(x float64, mode Angle) float64 {
	if mode == Radians {
		return x
	}
	return x * math.Pi / 180
}

func fromRadians(x float64, mode Angle) float64 {
	if mode == Radians {
		return x
	}
	return x * 180 / math.Pi
}
