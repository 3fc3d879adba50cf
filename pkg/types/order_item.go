package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the immutable line snapshot embedded in checkout sessions and
// orders. Name, image and price are captured at snapshot time and never
// refreshed from the catalog.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
}

// OrderItems is stored as a jsonb array.
type OrderItems []OrderItem

// Total sums unit price times quantity across all items.
func (items OrderItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
