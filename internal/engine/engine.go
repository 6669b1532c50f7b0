// Package engine converts values between units of one catalog category and
// renders the display formula for a conversion.
//
// The engine is a stateless view over an immutable catalog; every call is a
// pure function of its inputs and the engine is safe for concurrent use.
package engine

import (
	"fmt"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/catalog"
)

// Request is a single conversion request.
type Request struct {
	Category string  `json:"category"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Value    float64 `json:"value"`
}

// Swap exchanges the source and target units. The value is kept as is and
// nothing is recomputed until the swapped request is converted.
func (r Request) Swap() Request {
	r.From, r.To = r.To, r.From
	return r
}

// Result is a completed conversion.
type Result struct {
	Request   Request
	Converted float64
	Formula   string
	// Fallback is set when the category or a unit id was not recognized and
	// Converted came from the lenient fallback path.
	Fallback bool
}

// Engine converts values using a catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates an engine over cat.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Default returns an engine over the built-in catalog.
func Default() *Engine {
	return New(catalog.Default())
}

// Catalog returns the catalog the engine converts against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Convert converts value from one unit to another and never fails.
//
// Identical ids return value. An unrecognized category uses the catalog's
// fallback list, and any unit id missing from the resolved list returns value
// unchanged. Linear results are not rounded.
func (e *Engine) Convert(category, from, to string, value float64) float64 {
	return e.Lenient(Request{Category: category, From: from, To: to, Value: value}).Converted
}

// Lenient is Convert returning a full Result, with Fallback reporting
// whether the lenient path was taken.
func (e *Engine) Lenient(req Request) Result {
	entry, known := e.catalog.Resolve(catalog.Category(req.Category))
	if req.From == req.To {
		_, ok := entry.Unit(req.From)
		return newResult(req, req.Value, !known || !ok)
	}
	v, err := entry.Rule.Convert(req.From, req.To, req.Value)
	if err != nil {
		return newResult(req, req.Value, true)
	}
	return newResult(req, v, !known)
}

// Do converts req and reports unrecognized categories and units as errors
// wrapping apperr.ErrUnrecognizedCategory or apperr.ErrUnrecognizedUnit.
func (e *Engine) Do(req Request) (Result, error) {
	entry, err := e.catalog.Lookup(catalog.Category(req.Category))
	if err != nil {
		return Result{}, err
	}
	for _, id := range []string{req.From, req.To} {
		if _, ok := entry.Unit(id); !ok {
			return Result{}, fmt.Errorf("%w: %q in %s", apperr.ErrUnrecognizedUnit, id, entry.Category)
		}
	}
	if req.From == req.To {
		return newResult(req, req.Value, false), nil
	}
	v, err := entry.Rule.Convert(req.From, req.To, req.Value)
	if err != nil {
		return Result{}, err
	}
	return newResult(req, v, false), nil
}

func newResult(req Request, converted float64, fallback bool) Result {
	return Result{
		Request:   req,
		Converted: converted,
		Formula:   Formula(req, converted),
		Fallback:  fallback,
	}
}
