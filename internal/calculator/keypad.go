package calculator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/engine"
)

// ErrorDisplay is shown after an invalid operation such as the factorial of a
// negative number.
const ErrorDisplay = "Error"

// Keypad is the calculator's input state machine. The zero value is not
// ready; use NewKeypad. A Keypad is not safe for concurrent use.
type Keypad struct {
	display   string
	memory    float64
	hasMemory bool
	operation string
	prev      float64
	hasPrev   bool
	angle     Angle
	// waiting is set when the next digit starts a new operand.
	waiting bool
}

// NewKeypad returns a cleared keypad in degree mode.
func NewKeypad() *Keypad {
	return &Keypad{display: "0"}
}

// Display returns the current display text.
func (k *Keypad) Display() string { return k.display }

// Angle returns the current angle mode.
func (k *Keypad) Angle() Angle { return k.angle }

// Memory returns the memory register and whether it has been set.
func (k *Keypad) Memory() (float64, bool) { return k.memory, k.hasMemory }

// Run feeds keys in order and returns the final display. It stops at the
// first key that is not recognized.
func (k *Keypad) Run(keys []string) (string, error) {
	for _, key := range keys {
		if err := k.Press(key); err != nil {
			return k.display, err
		}
	}
	return k.display, nil
}

// Press applies a single key.
//
// Keys: digits 0-9, ".", binary operators (+ - × ÷ ^ and * / x), "=", "C"
// (clear entry), "AC" (clear all), "M+", "M-", "MR", "deg", "rad", "±",
// "%", "pi", "e", "rand", "1/x", "x²", "x³", "n!" and the names listed in
// Functions.
func (k *Keypad) Press(key string) error {
	key = strings.TrimSpace(key)
	switch {
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		k.inputDigit(key)
	case key == ".":
		k.inputDecimal()
	case IsBinary(key):
		k.performOperation(key)
	case key == "=":
		k.equals()
	case key == "C":
		k.display = "0"
		k.waiting = false
	case key == "AC":
		k.display = "0"
		k.operation = ""
		k.hasPrev = false
		k.prev = 0
		k.waiting = false
	case key == "M+":
		k.memory += k.current()
		k.hasMemory = true
		k.waiting = true
	case key == "M-" || key == "M−":
		k.memory -= k.current()
		k.hasMemory = true
		k.waiting = true
	case key == "MR":
		if k.hasMemory {
			k.show(k.memory)
		}
	case key == "deg":
		k.angle = Degrees
	case key == "rad":
		k.angle = Radians
	case key == "±" || key == "negate":
		// Sign and percent edit the operand in place.
		k.display = engine.FormatNumber(-k.current())
	case key == "%" || key == "percent":
		k.display = engine.FormatNumber(k.current() / 100)
	case key == "rand":
		k.show(rand.Float64())
	default:
		if c, ok := Constant(key); ok {
			k.show(c)
			return nil
		}
		return k.unary(key)
	}
	return nil
}

var keyAliases = map[string]string{
	"sin⁻¹": "asin",
	"cos⁻¹": "acos",
	"tan⁻¹": "atan",
	"x²":    "square",
	"x³":    "cube",
	"1/x":   "reciprocal",
	"n!":    "factorial",
	"x!":    "factorial",
}

func (k *Keypad) unary(key string) error {
	fn := key
	if alias, ok := keyAliases[key]; ok {
		fn = alias
	}
	if fn == "factorial" {
		// Factorial reads the display as an integer.
		v, err := Factorial(k.currentInt())
		if err != nil {
			k.display = ErrorDisplay
			k.waiting = true
			return nil
		}
		k.show(v)
		return nil
	}
	v, err := Unary(fn, k.current(), k.angle)
	if err != nil {
		return fmt.Errorf("%w: key %q", apperr.ErrInvalidInput, key)
	}
	k.show(v)
	return nil
}

func (k *Keypad) inputDigit(d string) {
	if k.waiting {
		k.display = d
		k.waiting = false
		return
	}
	if k.display == "0" {
		k.display = d
		return
	}
	k.display += d
}

func (k *Keypad) inputDecimal() {
	if k.waiting {
		k.display = "0."
		k.waiting = false
		return
	}
	if !strings.Contains(k.display, ".") {
		k.display += "."
	}
}

func (k *Keypad) performOperation(next string) {
	input := k.current()
	if !k.hasPrev {
		k.prev = input
		k.hasPrev = true
	} else if k.operation != "" {
		result := Binary(k.operation, k.prev, input)
		k.display = engine.FormatNumber(result)
		k.prev = result
	}
	k.waiting = true
	k.operation = next
}

func (k *Keypad) equals() {
	if k.operation == "" || !k.hasPrev {
		return
	}
	result := Binary(k.operation, k.prev, k.current())
	k.display = engine.FormatNumber(result)
	k.prev = 0
	k.hasPrev = false
	k.operation = ""
	k.waiting = true
}

// show puts a computed value on the display and starts a new operand.
func (k *Keypad) show(v float64) {
	k.display = engine.FormatNumber(v)
	k.waiting = true
}

// current reads the display as a number. Text that does not parse, such as
// ErrorDisplay, reads as NaN.
func (k *Keypad) current() float64 {
	v, err := strconv.ParseFloat(k.display, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// currentInt reads the leading integer of the display.
func (k *Keypad) currentInt() float64 {
	s := k.display
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
