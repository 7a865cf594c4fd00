// Package pricing holds the pure cart, totals and assembly rules for proposals.
package pricing

import (
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
)

// NewItemID returns a fresh line item id. ULIDs are unique without
// coordination and sort by creation time.
var NewItemID = func() string {
	return ulid.Make().String()
}

// AddItem returns a new cart with product appended as a single unit. The input
// cart is not modified. A nil product leaves the cart as is.
func AddItem(items []domain.LineItem, product *domain.Product) ([]domain.LineItem, error) {
	if product == nil {
		return items, domain.ErrProductRequired
	}
	if product.Price.IsNegative() {
		return items, domain.ErrInvalidUnitPrice
	}

	productID := product.ID
	next := make([]domain.LineItem, len(items), len(items)+1)
	copy(next, items)
	next = append(next, domain.LineItem{
		ID:          NewItemID(),
		ProductID:   &productID,
		Name:        product.Name,
		Description: product.Description,
		UnitPrice:   product.Price,
		Quantity:    1,
	})
	return next, nil
}

// RemoveItem returns a new cart without the item. Unknown ids are ignored.
func RemoveItem(items []domain.LineItem, itemID string) []domain.LineItem {
	next := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == itemID {
			continue
		}
		next = append(next, item)
	}
	return next
}

// Subtotal sums unit price times quantity at full precision.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total
}

// ValidateItems checks the per-item invariants and id uniqueness.
func ValidateItems(items []domain.LineItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.UnitPrice.IsNegative() {
			return domain.ErrInvalidUnitPrice
		}
		if item.Quantity < 1 {
			return domain.ErrInvalidQuantity
		}
		if _, dup := seen[item.ID]; dup || item.ID == "" {
			return domain.ErrInvalidID
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
