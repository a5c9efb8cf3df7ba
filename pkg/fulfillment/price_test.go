package fulfillment

import (
	"math"
	"testing"
)

func TestQuoteWithinRange(t *testing.T) {
	table := NewPriceTable(DefaultRanges())

	tests := []struct {
		symbol string
		want   PriceRange
	}{
		{"IBM", PriceRange{170, 210}},
		{"ibm", PriceRange{170, 210}},
		{"Microsoft", PriceRange{80, 101}},
		{"Apple", PriceRange{160, 190}},
		{"SONY", PriceRange{30, 40}},
		{"Optus", PriceRange{10, 24}},
		{"", PriceRange{10, 24}},
	}

	for _, tt := range tests {
		if got := table.Range(tt.symbol); got != tt.want {
			t.Errorf("Range(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
		for i := 0; i < 500; i++ {
			p := table.Quote(tt.symbol)
			if p < tt.want.Min || p > tt.want.Max {
				t.Fatalf("Quote(%q) = %v, outside [%v, %v]", tt.symbol, p, tt.want.Min, tt.want.Max)
			}
		}
	}
}

func TestQuoteBounds(t *testing.T) {
	low := NewPriceTable(DefaultRanges(), WithRand(func() float64 { return 0 }))
	high := NewPriceTable(DefaultRanges(), WithRand(func() float64 { return 1 }))

	tests := []struct {
		name  string
		table *PriceTable
		sym   string
		want  float64
	}{
		{"apple low", low, "Apple", 160},
		{"apple high", high, "Apple", 190},
		{"fallback low", low, "Telstra", 10},
		{"fallback high", high, "Telstra", 24},
	}
	for _, tt := range tests {
		if got := tt.table.Quote(tt.sym); got != tt.want {
			t.Errorf("%s: Quote(%q) = %v, want %v", tt.name, tt.sym, got, tt.want)
		}
	}
}

func TestQuoteNotRounded(t *testing.T) {
	table := NewPriceTable(nil, WithRand(func() float64 { return 0.123456 }), WithFallback(PriceRange{0, 1}))
	if got := table.Quote("x"); math.Abs(got-0.123456) > 1e-12 {
		t.Errorf("Quote() = %v, want 0.123456", got)
	}
}
