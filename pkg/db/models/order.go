package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/pkg/enums"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

// Order is the durable record materialized from a paid checkout session.
// After creation it is independent of its source session; status and delivery
// fields are mutated only through the admin surface.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OrderItems      types.OrderItems    `gorm:"column:order_items;type:jsonb;serializer:json;not null"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   string              `gorm:"column:payment_method;not null"`
	TotalPrice      decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	IsPaid          bool                `gorm:"column:is_paid;not null;default:false"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	IsDelivered     bool                `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'Processing'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'Pending'"`
	PaymentDetails  types.JSONMap       `gorm:"column:payment_details;type:jsonb;serializer:json"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
