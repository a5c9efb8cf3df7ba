package recognizer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/voicetyped/orderbot/internal/restutil"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

// Entity types of the order model.
const (
	EntityTypeStocks    = "Stocks"
	EntityTypeNumber    = "builtin.number"
	EntityTypeDirection = "OrderDirection"
)

// LUISConfig locates a published LUIS v2 application. Host is a hostname
// queried over https, or a full base URL.
type LUISConfig struct {
	Host    string
	AppID   string
	Key     string
	Staging bool
}

// LUIS queries a LUIS v2 endpoint.
type LUIS struct {
	cfg    LUISConfig
	client *restutil.Client
}

// NewLUIS creates a LUIS recognizer.
func NewLUIS(cfg LUISConfig, client *restutil.Client) *LUIS {
	return &LUIS{cfg: cfg, client: client}
}

type luisResponse struct {
	Query            string       `json:"query"`
	TopScoringIntent *luisIntent  `json:"topScoringIntent"`
	Intents          []luisIntent `json:"intents"`
	Entities         []luisEntity `json:"entities"`
}

type luisIntent struct {
	Intent string  `json:"intent"`
	Score  float64 `json:"score"`
}

type luisEntity struct {
	Entity     string         `json:"entity"`
	Type       string         `json:"type"`
	Resolution luisResolution `json:"resolution"`
}

type luisResolution struct {
	Value  any   `json:"value"`
	Values []any `json:"values"`
}

// URL returns the query URL for text.
func (l *LUIS) URL(text string) string {
	q := url.Values{}
	q.Set("subscription-key", l.cfg.Key)
	q.Set("staging", strconv.FormatBool(l.cfg.Staging))
	q.Set("verbose", "true")
	q.Set("timezoneOffset", "0")
	q.Set("q", text)
	base := l.cfg.Host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Scheme: "https", Host: l.cfg.Host}
	}
	u = u.JoinPath("luis", "v2.0", "apps", l.cfg.AppID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Recognize implements Recognizer.
func (l *LUIS) Recognize(ctx context.Context, text string) (*dialog.Intent, error) {
	var resp luisResponse
	if err := l.client.DoJSON(ctx, http.MethodGet, l.URL(text), nil, &resp); err != nil {
		return nil, fmt.Errorf("luis query: %w", err)
	}
	return resp.intent(), nil
}

func (r *luisResponse) intent() *dialog.Intent {
	in := &dialog.Intent{Name: dialog.IntentNone}
	switch {
	case r.TopScoringIntent != nil:
		in.Name, in.Score = r.TopScoringIntent.Intent, r.TopScoringIntent.Score
	case len(r.Intents) > 0:
		in.Name, in.Score = r.Intents[0].Intent, r.Intents[0].Score
	}

	for _, e := range r.Entities {
		switch e.Type {
		case EntityTypeStocks:
			var canonical string
			if len(e.Resolution.Values) > 0 {
				canonical = fmt.Sprint(e.Resolution.Values[0])
			}
			in.Entities = append(in.Entities, dialog.StockEntity(canonical, e.Entity))
		case EntityTypeNumber:
			n, ok := dialog.ParseNumber(fmt.Sprint(e.Resolution.Value))
			if !ok {
				n, ok = dialog.ParseNumber(e.Entity)
			}
			if ok {
				in.Entities = append(in.Entities, dialog.NumberEntity(n, e.Entity))
			}
		case EntityTypeDirection:
			in.Entities = append(in.Entities, dialog.DirectionEntity(e.Entity))
		}
	}
	return in
}
