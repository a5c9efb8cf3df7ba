package dialog

import (
	"regexp"
	"strconv"
	"strings"
)

// Resolution is the outcome of resolving one reply against a slot.
type Resolution struct {
	Value   any
	Matched bool
}

// Resolver turns a raw reply into a slot value. Implementations are pure.
type Resolver interface {
	Resolve(input string, prior OrderState) Resolution
}

// VocabularyResolver matches free text against a closed list of canonical names.
type VocabularyResolver struct {
	Vocabulary []string
	Threshold  float64
}

func (r VocabularyResolver) Resolve(input string, _ OrderState) Resolution {
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = MatchThreshold
	}
	m, ok := BestMatch(r.Vocabulary, input, threshold)
	if !ok {
		return Resolution{}
	}
	return Resolution{Value: m.Entity, Matched: true}
}

var (
	numberPattern = regexp.MustCompile(`[-+]?\d[\d,]*(\.\d+)?|[-+]?\.\d+`)
	numberWords   = map[string]float64{
		"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"eleven": 11, "twelve": 12, "dozen": 12, "twenty": 20, "fifty": 50, "hundred": 100,
	}
)

// NumberResolver parses the first number in a reply. Quantities must be positive.
type NumberResolver struct{}

func (NumberResolver) Resolve(input string, _ OrderState) Resolution {
	n, ok := ParseNumber(input)
	if !ok || n <= 0 {
		return Resolution{}
	}
	return Resolution{Value: n, Matched: true}
}

// ParseNumber extracts the first integer or decimal from text, also
// accepting a few number words ("five", "a dozen").
func ParseNumber(text string) (float64, bool) {
	if m := numberPattern.FindString(text); m != "" {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err == nil {
			return n, true
		}
	}
	for _, w := range strings.Fields(fold(text)) {
		if n, ok := numberWords[strings.Trim(w, ".,!?")]; ok {
			return n, true
		}
	}
	return 0, false
}

// DirectionChoices are the buttons offered for the direction slot.
var DirectionChoices = []string{"Buy", "Sell"}

var sellWords = map[string]bool{"sell": true, "loose": true, "short": true, "cut": true}

// NormaliseDirection maps spoken directions onto Buy or Sell. Only the sell
// synonyms are recognised; anything else is a buy.
func NormaliseDirection(s string) Direction {
	if sellWords[fold(s)] {
		return Sell
	}
	return Buy
}

// DirectionResolver resolves a reply to a choice prompt: the choice number,
// a fuzzy match on the choice text, or a sell synonym.
type DirectionResolver struct {
	Choices []string
}

func (r DirectionResolver) Resolve(input string, _ OrderState) Resolution {
	choices := r.Choices
	if len(choices) == 0 {
		choices = DirectionChoices
	}

	text := strings.TrimSpace(input)
	if i, err := strconv.Atoi(text); err == nil && i >= 1 && i <= len(choices) {
		return Resolution{Value: NormaliseDirection(choices[i-1]), Matched: true}
	}
	if m, ok := BestMatch(choices, text, MatchThreshold); ok {
		return Resolution{Value: NormaliseDirection(m.Entity), Matched: true}
	}
	if sellWords[fold(text)] {
		return Resolution{Value: Sell, Matched: true}
	}
	return Resolution{}
}

var (
	yesWords = map[string]bool{
		"yes": true, "y": true, "yep": true, "yeah": true, "sure": true, "ok": true,
		"okay": true, "true": true, "confirm": true, "1": true,
	}
	noWords = map[string]bool{
		"no": true, "n": true, "nope": true, "nah": true, "false": true, "2": true,
	}
)

// ConfirmResolver resolves yes/no replies.
type ConfirmResolver struct{}

func (ConfirmResolver) Resolve(input string, _ OrderState) Resolution {
	text := strings.Trim(fold(input), ".!? ")
	word := text
	if fields := strings.Fields(text); len(fields) > 0 {
		word = strings.Trim(fields[0], ".,!?")
	}
	switch {
	case yesWords[text], yesWords[word]:
		return Resolution{Value: true, Matched: true}
	case noWords[text], noWords[word]:
		return Resolution{Value: false, Matched: true}
	}
	return Resolution{}
}
