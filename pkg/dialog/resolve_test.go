package dialog

import "testing"

func TestNormaliseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"sell", Sell},
		{"SELL", Sell},
		{"Loose", Sell},
		{"short", Sell},
		{"Cut", Sell},
		{"buy", Buy},
		{"lose", Buy},
		{"long", Buy},
		{"", Buy},
	}

	for _, tt := range tests {
		got := NormaliseDirection(tt.in)
		if got != tt.want {
			t.Errorf("NormaliseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := NormaliseDirection(string(got)); again != got {
			t.Errorf("NormaliseDirection not idempotent for %q: %q then %q", tt.in, got, again)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5", 5, true},
		{"buy 2.5 shares", 2.5, true},
		{"1,000", 1000, true},
		{"five", 5, true},
		{"a dozen please", 12, true},
		{"-3", -3, true},
		{"none", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumberResolverRejectsNonPositive(t *testing.T) {
	for _, in := range []string{"0", "-3", "lots"} {
		if res := (NumberResolver{}).Resolve(in, OrderState{}); res.Matched {
			t.Errorf("Resolve(%q) matched %v", in, res.Value)
		}
	}
	res := NumberResolver{}.Resolve("20", OrderState{})
	if !res.Matched || res.Value != 20.0 {
		t.Errorf("Resolve(20) = %+v", res)
	}
}

func TestDirectionResolver(t *testing.T) {
	r := DirectionResolver{Choices: DirectionChoices}
	tests := []struct {
		in      string
		want    Direction
		matched bool
	}{
		{"1", Buy, true},
		{"2", Sell, true},
		{"Sell", Sell, true},
		{"buy", Buy, true},
		{"short", Sell, true},
		{"3", "", false},
		{"banana", "", false},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.in, OrderState{})
		if res.Matched != tt.matched {
			t.Errorf("Resolve(%q).Matched = %v, want %v", tt.in, res.Matched, tt.matched)
			continue
		}
		if tt.matched && res.Value != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.in, res.Value, tt.want)
		}
	}
}

func TestConfirmResolver(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		matched bool
	}{
		{"yes", true, true},
		{"Yes please", true, true},
		{"ok", true, true},
		{"no", false, true},
		{"Nope.", false, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		res := ConfirmResolver{}.Resolve(tt.in, OrderState{})
		if res.Matched != tt.matched {
			t.Errorf("Resolve(%q).Matched = %v, want %v", tt.in, res.Matched, tt.matched)
			continue
		}
		if tt.matched && res.Value != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.in, res.Value, tt.want)
		}
	}
}

func TestVocabularyResolver(t *testing.T) {
	r := VocabularyResolver{Vocabulary: []string{"Apple", "Optus"}}
	if res := r.Resolve("appl", OrderState{}); !res.Matched || res.Value != "Apple" {
		t.Errorf("Resolve(appl) = %+v, want Apple", res)
	}
	if res := r.Resolve("telstra", OrderState{}); res.Matched {
		t.Errorf("Resolve(telstra) matched %v", res.Value)
	}
}
