package dialog

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MatchThreshold is the minimum score for a closed-vocabulary match.
const MatchThreshold = 0.7

// Match is the best candidate found for an utterance.
type Match struct {
	Index  int
	Entity string
	Score  float64
}

// fold builds a fresh Caser per call; Casers carry state and must not be
// shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Score rates how well utterance names choice, in [0,1]. A choice containing
// the whole utterance scores by coverage ("appl" vs "Apple" = 0.8); an
// utterance containing the choice scores 0.5 plus coverage, capped at 0.9;
// otherwise the choice is scored by the total length of utterance tokens
// found inside it.
func Score(choice, utterance string) float64 {
	u := fold(utterance)
	v := fold(choice)
	if u == "" || v == "" {
		return 0
	}

	ul := float64(utf8.RuneCountInString(u))
	vl := float64(utf8.RuneCountInString(v))

	var score float64
	switch {
	case strings.Contains(v, u):
		score = ul / vl
	case strings.Contains(u, v):
		score = min(0.5+vl/ul, 0.9)
	default:
		matched := 0
		for _, token := range strings.Fields(u) {
			if strings.Contains(v, token) {
				matched += utf8.RuneCountInString(token)
			}
		}
		score = float64(matched) / vl
	}
	return min(score, 1)
}

// BestMatch returns the highest scoring choice whose score is at least
// threshold. Ties go to the earlier choice.
func BestMatch(choices []string, utterance string, threshold float64) (Match, bool) {
	best := Match{Index: -1}
	for i, choice := range choices {
		s := Score(choice, utterance)
		if s > best.Score {
			best = Match{Index: i, Entity: choice, Score: s}
		}
	}
	if best.Index < 0 || best.Score < threshold {
		return Match{}, false
	}
	return best, true
}
