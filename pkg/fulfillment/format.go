package fulfillment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/voicetyped/orderbot/pkg/dialog"
)

// NoOrdersText is the reply when the user holds nothing.
const NoOrdersText = "Ok you have not placed any orders yet.  Say Orders to get started."

// FormatHoldings summarises share counts per stock, in name order.
func FormatHoldings(holdings map[string]Amount) string {
	if len(holdings) == 0 {
		return NoOrdersText
	}

	stocks := make([]string, 0, len(holdings))
	for s := range holdings {
		stocks = append(stocks, s)
	}
	sort.Strings(stocks)

	parts := make([]string, len(stocks))
	for i, s := range stocks {
		parts[i] = fmt.Sprintf("%s shares of %s", dialog.FormatQty(float64(holdings[s])), s)
	}
	return "Ok, you have " + strings.Join(parts, ", ")
}

// FormatHolding describes the position in one stock.
func FormatHolding(stock string, p *Position) string {
	if !p.Held() {
		return fmt.Sprintf("Ok, you have no shares of %s!", stock)
	}
	return fmt.Sprintf("Ok, you have %s shares of %s at an average price of $%s. Total values for this Holding is AUD $%s.",
		dialog.FormatQty(float64(*p.Qty)), stock,
		dialog.FormatMoney(float64(p.AvgPrice)), dialog.FormatMoney(float64(p.TotalPrice)))
}
