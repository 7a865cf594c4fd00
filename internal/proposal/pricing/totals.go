package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/money"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
)

// ComputeTotals derives subtotal, tax and total. Nothing is rounded here;
// rounding happens only when amounts are formatted for display.
func ComputeTotals(items []domain.LineItem, policy taxdomain.Policy) domain.Totals {
	sub := Subtotal(items)
	tax := decimal.Zero
	if policy.Enabled {
		tax = money.Percent(sub, policy.Rate)
	}
	return domain.Totals{
		SubTotal:  sub,
		TaxAmount: tax,
		Total:     sub.Add(tax),
	}
}
