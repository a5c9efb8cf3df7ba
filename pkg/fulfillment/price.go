// Package fulfillment prices completed orders and answers holdings queries.
package fulfillment

import (
	"math/rand/v2"
	"strings"
)

// PriceRange is an inclusive quote range.
type PriceRange struct {
	Min float64
	Max float64
}

// DefaultRange applies to symbols without their own range.
var DefaultRange = PriceRange{Min: 10, Max: 24}

// DefaultRanges are the quote ranges of the known symbols.
func DefaultRanges() map[string]PriceRange {
	return map[string]PriceRange{
		"IBM":       {Min: 170, Max: 210},
		"Microsoft": {Min: 80, Max: 101},
		"Apple":     {Min: 160, Max: 190},
		"Sony":      {Min: 30, Max: 40},
	}
}

// PriceTable quotes placeholder prices drawn uniformly from a per-symbol
// range. Symbols match case-insensitively. Quotes are not rounded.
type PriceTable struct {
	ranges   map[string]PriceRange
	fallback PriceRange
	rand     func() float64
}

// PriceOption configures a PriceTable.
type PriceOption func(*PriceTable)

// WithFallback sets the range used for unknown symbols.
func WithFallback(r PriceRange) PriceOption {
	return func(t *PriceTable) { t.fallback = r }
}

// WithRand replaces the random source. fn must return values in [0,1].
func WithRand(fn func() float64) PriceOption {
	return func(t *PriceTable) { t.rand = fn }
}

// NewPriceTable creates a table from symbol ranges.
func NewPriceTable(ranges map[string]PriceRange, opts ...PriceOption) *PriceTable {
	t := &PriceTable{
		ranges:   make(map[string]PriceRange, len(ranges)),
		fallback: DefaultRange,
		rand:     rand.Float64,
	}
	for sym, r := range ranges {
		t.ranges[strings.ToLower(sym)] = r
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Range returns the quote range for a symbol.
func (t *PriceTable) Range(symbol string) PriceRange {
	if r, ok := t.ranges[strings.ToLower(strings.TrimSpace(symbol))]; ok {
		return r
	}
	return t.fallback
}

// Quote returns a price within the symbol's range. It never fails.
func (t *PriceTable) Quote(symbol string) float64 {
	r := t.Range(symbol)
	p := r.Min + t.rand()*(r.Max-r.Min)
	return min(max(p, r.Min), r.Max)
}
