package recognizer

import (
	"context"
	"regexp"
	"strings"

	"github.com/voicetyped/orderbot/pkg/catalog"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

var (
	orderPattern    = regexp.MustCompile(`(?i)^\s*(order|buy|sell)\b`)
	holdingsPattern = regexp.MustCompile(`(?i)\b(holdings?|portfolio)\b`)
	digitsPattern   = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)
	directionWords  = map[string]bool{"buy": true, "sell": true, "short": true, "cut": true, "loose": true}
)

// Keyword is an offline recognizer for deployments without an NLU service.
// Messages starting with "order" are orders, messages mentioning holdings
// or a portfolio are holdings queries.
type Keyword struct {
	Catalog *catalog.Catalog
}

func (k Keyword) Recognize(_ context.Context, text string) (*dialog.Intent, error) {
	in := &dialog.Intent{Name: dialog.IntentNone, Score: 1}
	switch {
	case holdingsPattern.MatchString(text):
		in.Name = dialog.IntentOrderQuery
	case orderPattern.MatchString(text):
		in.Name = dialog.IntentOrder
	default:
		return in, nil
	}

	if k.Catalog != nil {
		if name, span, ok := k.Catalog.Find(text); ok {
			in.Entities = append(in.Entities, dialog.StockEntity(name, span))
		}
	}
	if m := digitsPattern.FindString(text); m != "" {
		if n, ok := dialog.ParseNumber(m); ok {
			in.Entities = append(in.Entities, dialog.NumberEntity(n, m))
		}
	}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if directionWords[w] {
			in.Entities = append(in.Entities, dialog.DirectionEntity(w))
			break
		}
	}
	return in, nil
}
