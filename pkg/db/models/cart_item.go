package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line in a cart. Line identity within a cart is the tuple
// (product_id, size, color); the unique index keeps duplicates out, so adding
// the same variant twice must merge by summing quantity instead.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_line_variant,priority:1"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_line_variant,priority:2"`
	Name      string          `gorm:"column:name;not null"`
	ImageURL  string          `gorm:"column:image_url;not null;default:''"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Size      string          `gorm:"column:size;not null;default:'';uniqueIndex:idx_cart_line_variant,priority:3"`
	Color     string          `gorm:"column:color;not null;default:'';uniqueIndex:idx_cart_line_variant,priority:4"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is unit price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// SameVariant reports whether the line matches the given identity tuple.
func (c CartItem) SameVariant(productID uuid.UUID, size, color string) bool {
	return c.ProductID == productID && c.Size == size && c.Color == color
}
