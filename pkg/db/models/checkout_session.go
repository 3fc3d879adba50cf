package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/pkg/enums"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

// CheckoutSession is an immutable-intent snapshot of a prospective purchase.
// Items, address, payment method and total never change after creation; only
// the payment and finalization fields move, and each moves one way.
type CheckoutSession struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Items           types.OrderItems    `gorm:"column:items;type:jsonb;serializer:json;not null"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   string              `gorm:"column:payment_method;not null"`
	TotalPrice      decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'Pending'"`
	IsPaid          bool                `gorm:"column:is_paid;not null;default:false"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	PaymentDetails  types.JSONMap       `gorm:"column:payment_details;type:jsonb;serializer:json"`
	IsFinalized     bool                `gorm:"column:is_finalized;not null;default:false"`
	FinalizedAt     *time.Time          `gorm:"column:finalized_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
