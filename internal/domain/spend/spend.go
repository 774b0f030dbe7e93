// Package spend defines the fixed spending category set and the
// immutable per-request spending vector the engine consumes.
package spend

import (
	"encoding/json"
	"fmt"
)

// Category identifies one spending category from the fixed set.
type Category string

// The enumerable category set. Order here is the canonical iteration
// order everywhere: breakdowns, allocation passes, and tie-breaks all
// walk categories in this order so identical inputs produce identical
// outputs.
const (
	Dining          Category = "dining"
	Groceries       Category = "groceries"
	Petrol          Category = "petrol"
	Transport       Category = "transport"
	Streaming       Category = "streaming"
	Entertainment   Category = "entertainment"
	Utilities       Category = "utilities"
	Online          Category = "online"
	Travel          Category = "travel"
	Overseas        Category = "overseas"
	Retail          Category = "retail"
	Departmental    Category = "departmental"
	ForeignCurrency Category = "fcy"
	CommuterPass    Category = "simplygo"
	Other           Category = "other"
)

// all is the canonical category order. Do not reorder.
var all = []Category{
	Dining, Groceries, Petrol, Transport, Streaming,
	Entertainment, Utilities, Online, Travel, Overseas,
	Retail, Departmental, ForeignCurrency, CommuterPass, Other,
}

// All returns the categories in canonical order. The returned slice is
// a copy and safe to mutate.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is a member of the category set.
func Valid(c Category) bool {
	for _, k := range all {
		if k == c {
			return true
		}
	}
	return false
}

// Vector is a user's categorized monthly spending. It is constructed
// once per request and never mutated afterwards.
type Vector struct {
	amounts map[Category]float64
	total   float64
}

// NewVector validates amounts and builds a Vector. Unknown categories
// and negative amounts are rejected before any calculation runs.
func NewVector(amounts map[Category]float64) (Vector, error) {
	v := Vector{amounts: make(map[Category]float64, len(amounts))}
	for c, amt := range amounts {
		if !Valid(c) {
			return Vector{}, fmt.Errorf("category %q: %w", c, ErrUnknownCategory)
		}
		if amt < 0 {
			return Vector{}, fmt.Errorf("category %q: amount %.2f: %w", c, amt, ErrNegativeAmount)
		}
		if amt == 0 {
			continue
		}
		v.amounts[c] = amt
		v.total += amt
	}
	return v, nil
}

// Zero returns an empty vector.
func Zero() Vector {
	return Vector{amounts: map[Category]float64{}}
}

// Amount returns the spend recorded for c, zero if absent.
func (v Vector) Amount(c Category) float64 {
	return v.amounts[c]
}

// Total returns the derived total across all categories.
func (v Vector) Total() float64 {
	return v.total
}

// IsZero reports whether the vector carries no spend at all.
func (v Vector) IsZero() bool {
	return v.total == 0
}

// SumOf returns the aggregate spend across the given categories.
func (v Vector) SumOf(categories []Category) float64 {
	var sum float64
	for _, c := range categories {
		sum += v.amounts[c]
	}
	return sum
}

// Map returns a copy of the per-category amounts. Zero categories are
// omitted, matching what NewVector stores.
func (v Vector) Map() map[Category]float64 {
	out := make(map[Category]float64, len(v.amounts))
	for c, amt := range v.amounts {
		out[c] = amt
	}
	return out
}

// MarshalJSON renders the vector as a category-to-amount object.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON parses a category-to-amount object through the same
// validation NewVector applies.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var amounts map[Category]float64
	if err := json.Unmarshal(data, &amounts); err != nil {
		return err
	}
	parsed, err := NewVector(amounts)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
