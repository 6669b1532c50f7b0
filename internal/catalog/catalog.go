// Package catalog holds the static unit tables for every supported
// conversion category and the conversion rule bound to each category.
//
// Category and unit identifiers are canonical lower-case strings and lookups
// are case-sensitive. Transports normalise user-facing labels with Normalize
// before calling into the catalog.
package catalog

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/starford/metron/internal/apperr"
)

// Category identifies a family of mutually convertible units.
type Category string

// Supported categories, in display order.
const (
	Length      Category = "length"
	Weight      Category = "weight"
	Temperature Category = "temperature"
	Volume      Category = "volume"
	Speed       Category = "speed"
	Area        Category = "area"
	Time        Category = "time"
)

// String returns the canonical identifier.
func (c Category) String() string { return string(c) }

// Normalize turns a user-supplied label such as " Length " into its
// canonical identifier form.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Unit is one selectable unit of a category.
//
// Factor is the amount of this unit equal to one base unit of the category.
// It is only meaningful for linear categories and is always > 0 there.
type Unit struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Factor float64 `json:"-"`
}

// Entry is a category with its ordered units and its conversion rule.
type Entry struct {
	Category Category
	Label    string
	Rule     Rule

	units []Unit
	index map[string]int
}

// Kind returns the conversion kind chosen for this category.
func (e *Entry) Kind() Kind { return e.Rule.Kind() }

// Units returns the ordered unit list. The first unit of a linear category
// is its base unit. The returned slice is a copy.
func (e *Entry) Units() []Unit {
	out := make([]Unit, len(e.units))
	copy(out, e.units)
	return out
}

// Unit looks up a unit by id.
func (e *Entry) Unit(id string) (Unit, bool) {
	i, ok := e.index[id]
	if !ok {
		return Unit{}, false
	}
	return e.units[i], true
}

// Base returns the first listed unit.
func (e *Entry) Base() Unit { return e.units[0] }

// Catalog is an immutable set of category entries. It is safe for
// concurrent use.
type Catalog struct {
	order    []Category
	entries  map[Category]*Entry
	fallback *Entry
}

// New builds the built-in catalog.
func New() (*Catalog, error) {
	return build(builtinDefinitions(), fallbackDefinition())
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := New()
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in tables: %v", err))
	}
	return c
})

// Default returns the process-wide built-in catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Categories returns every recognized category in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.order))
	copy(out, c.order)
	return out
}

// Entries returns every recognized entry in display order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, cat := range c.order {
		out = append(out, c.entries[cat])
	}
	return out
}

// Lookup returns the entry for a recognized category.
func (c *Catalog) Lookup(category Category) (*Entry, error) {
	e, ok := c.entries[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedCategory, string(category))
	}
	return e, nil
}

// Resolve returns the entry for category, or the fallback entry when the
// category is not recognized. The boolean reports whether it was recognized.
func (c *Catalog) Resolve(category Category) (*Entry, bool) {
	if e, ok := c.entries[category]; ok {
		return e, true
	}
	return c.fallback, false
}

// Units lists the units of category. An unrecognized category yields the
// two-unit fallback list (meter, kilometer) rather than an error.
func (c *Catalog) Units(category Category) []Unit {
	e, _ := c.Resolve(category)
	return e.Units()
}

type definition struct {
	category Category
	label    string
	kind     Kind
	units    []Unit
	pairs    map[Pair]Affine
}

func build(defs []definition, fallback definition) (*Catalog, error) {
	c := &Catalog{entries: make(map[Category]*Entry, len(defs))}
	for _, d := range defs {
		if _, dup := c.entries[d.category]; dup {
			return nil, fmt.Errorf("catalog: duplicate category %q", d.category)
		}
		e, err := newEntry(d)
		if err != nil {
			return nil, err
		}
		c.order = append(c.order, d.category)
		c.entries[d.category] = e
	}
	fb, err := newEntry(fallback)
	if err != nil {
		return nil, err
	}
	c.fallback = fb
	return c, nil
}

func newEntry(d definition) (*Entry, error) {
	if len(d.units) == 0 {
		return nil, fmt.Errorf("catalog: category %q has no units", d.category)
	}
	e := &Entry{
		Category: d.category,
		Label:    d.label,
		units:    d.units,
		index:    make(map[string]int, len(d.units)),
	}
	for i, u := range d.units {
		if _, dup := e.index[u.ID]; dup {
			return nil, fmt.Errorf("catalog: %s: duplicate unit %q", d.category, u.ID)
		}
		e.index[u.ID] = i
	}

	switch d.kind {
	case KindLinear:
		for _, u := range d.units {
			if !(u.Factor > 0) || math.IsInf(u.Factor, 0) {
				return nil, fmt.Errorf("catalog: %s: unit %q has non-positive factor %v", d.category, u.ID, u.Factor)
			}
		}
		if d.units[0].Factor != 1 {
			return nil, fmt.Errorf("catalog: %s: base unit %q must have factor 1", d.category, d.units[0].ID)
		}
		e.Rule = newLinearRule(d.units)
	case KindAffine:
		for p := range d.pairs {
			_, fromOK := e.index[p.From]
			_, toOK := e.index[p.To]
			if !fromOK || !toOK {
				return nil, fmt.Errorf("catalog: %s: mapping %s -> %s references unknown unit", d.category, p.From, p.To)
			}
		}
		e.Rule = newAffineRule(d.units, d.pairs)
	default:
		return nil, fmt.Errorf("catalog: %s: unknown kind %q", d.category, d.kind)
	}
	return e, nil
}
