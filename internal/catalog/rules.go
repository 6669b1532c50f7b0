package catalog

import (
	"fmt"

	"github.com/starford/metron/internal/apperr"
)

// Kind tags how a category converts between its units.
type Kind string

const (
	// KindLinear categories scale through the category's base unit.
	KindLinear Kind = "linear"
	// KindAffine categories map each ordered unit pair with scale and offset.
	KindAffine Kind = "affine"
)

// Rule converts a value between two unit ids of a single category.
// Unknown ids yield an error wrapping apperr.ErrUnrecognizedUnit.
type Rule interface {
	Kind() Kind
	Convert(from, to string, value float64) (float64, error)
}

// LinearRule converts via the implicit base unit: value / from.Factor * to.Factor.
type LinearRule struct {
	units map[string]Unit
}

func newLinearRule(units []Unit) *LinearRule {
	m := make(map[string]Unit, len(units))
	for _, u := range units {
		m[u.ID] = u
	}
	return &LinearRule{units: m}
}

// Kind implements Rule.
func (r *LinearRule) Kind() Kind { return KindLinear }

// Convert implements Rule. No rounding is applied.
func (r *LinearRule) Convert(from, to string, value float64) (float64, error) {
	fu, ok := r.units[from]
	if !ok {
		return value, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedUnit, from)
	}
	tu, ok := r.units[to]
	if !ok {
		return value, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedUnit, to)
	}
	return (value / fu.Factor) * tu.Factor, nil
}

// Affine is a single ordered-pair mapping: result = value*Scale + Offset.
type Affine struct {
	Scale  float64
	Offset float64
}

// Apply maps value through the affine transform.
func (a Affine) Apply(value float64) float64 {
	return value*a.Scale + a.Offset
}

// Pair is an ordered (from, to) unit pair.
type Pair struct {
	From string
	To   string
}

// AffineRule converts with an explicit table keyed by ordered unit pair.
type AffineRule struct {
	units map[string]struct{}
	pairs map[Pair]Affine
}

func newAffineRule(units []Unit, pairs map[Pair]Affine) *AffineRule {
	m := make(map[string]struct{}, len(units))
	for _, u := range units {
		m[u.ID] = struct{}{}
	}
	return &AffineRule{units: m, pairs: pairs}
}

// Kind implements Rule.
func (r *AffineRule) Kind() Kind { return KindAffine }

// Convert implements Rule. Identical known ids map to value unchanged.
func (r *AffineRule) Convert(from, to string, value float64) (float64, error) {
	if _, ok := r.units[from]; !ok {
		return value, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedUnit, from)
	}
	if _, ok := r.units[to]; !ok {
		return value, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedUnit, to)
	}
	if from == to {
		return value, nil
	}
	a, ok := r.pairs[Pair{From: from, To: to}]
	if !ok {
		return value, fmt.Errorf("%w: no mapping %s -> %s", apperr.ErrUnrecognizedUnit, from, to)
	}
	return a.Apply(value), nil
}

// temperaturePairs is the closed celsius/fahrenheit/kelvin table.
func temperaturePairs() map[Pair]Affine {
	const (
		cToF = 9.0 / 5.0
		fToC = 5.0 / 9.0
		zero = 273.15
	)
	return map[Pair]Affine{
		{From: "celsius", To: "fahrenheit"}:    {Scale: cToF, Offset: 32},
		{From: "celsius", To: "kelvin"}:        {Scale: 1, Offset: zero},
		{From: "fahrenheit", To: "celsius"}:    {Scale: fToC, Offset: -32 * fToC},
		{From: "fahrenheit", To: "kelvin"}:     {Scale: fToC, Offset: -32*fToC + zero},
		{From: "kelvin", To: "celsius"}:        {Scale: 1, Offset: -zero},
		{From: "kelvin", To: "fahrenheit"}:     {Scale: cToF, Offset: -zero*cToF + 32},
	}
}
