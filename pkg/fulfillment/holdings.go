package fulfillment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/voicetyped/orderbot/internal/restutil"
)

// Amount is a number that also decodes from a JSON string.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", b, err)
	}
	*a = Amount(v)
	return nil
}

// Position is the holding of one stock. A nil Qty means no shares.
type Position struct {
	Qty        *Amount `json:"qty"`
	AvgPrice   Amount  `json:"avgPrice"`
	TotalPrice Amount  `json:"totalPrice"`
}

// Held reports whether the position has any shares.
func (p *Position) Held() bool {
	return p != nil && p.Qty != nil && *p.Qty != 0
}

// HoldingsStore reads the user's holdings. A nil result with a nil error
// means the store had nothing to say.
type HoldingsStore interface {
	Holdings(ctx context.Context) (map[string]Amount, error)
	HoldingFor(ctx context.Context, stock string) (*Position, error)
}

// HTTPHoldingsStore reads holdings from the order log service.
type HTTPHoldingsStore struct {
	client *restutil.Client
	base   *url.URL
}

// NewHTTPHoldingsStore creates a store rooted at base.
func NewHTTPHoldingsStore(client *restutil.Client, base *url.URL) *HTTPHoldingsStore {
	return &HTTPHoldingsStore{client: client, base: base}
}

// Holdings fetches GET <base>/holdings, a stock to quantity map.
func (s *HTTPHoldingsStore) Holdings(ctx context.Context) (map[string]Amount, error) {
	var out map[string]Amount
	err := s.client.DoJSON(ctx, http.MethodGet, s.base.JoinPath("holdings").String(), nil, &out)
	if errors.Is(err, restutil.ErrNoContent) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get holdings: %w", err)
	}
	if out == nil {
		out = map[string]Amount{}
	}
	return out, nil
}

// HoldingFor fetches GET <base>/stock/holding with body {"stock": stock}.
func (s *HTTPHoldingsStore) HoldingFor(ctx context.Context, stock string) (*Position, error) {
	var out Position
	body := map[string]string{"stock": stock}
	err := s.client.DoJSON(ctx, http.MethodGet, s.base.JoinPath("stock", "holding").String(), body, &out)
	if errors.Is(err, restutil.ErrNoContent) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get holding for %q: %w", stock, err)
	}
	return &out, nil
}
