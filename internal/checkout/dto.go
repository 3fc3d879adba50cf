package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

// SessionDTO is the checkout session shape returned by the API.
type SessionDTO struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"userId"`
	Items           types.OrderItems    `json:"checkoutItems"`
	ShippingAddress types.Address       `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	IsFinalized     bool                `json:"isFinalized"`
	FinalizedAt     *time.Time          `json:"finalizedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// ToDTO maps the persistence model onto the API shape.
func ToDTO(session *models.CheckoutSession) *SessionDTO {
	if session == nil {
		return nil
	}
	return &SessionDTO{
		ID:              session.ID,
		UserID:          session.UserID,
		Items:           session.Items,
		ShippingAddress: session.ShippingAddress,
		PaymentMethod:   session.PaymentMethod,
		TotalPrice:      session.TotalPrice,
		PaymentStatus:   session.PaymentStatus,
		IsPaid:          session.IsPaid,
		PaidAt:          session.PaidAt,
		IsFinalized:     session.IsFinalized,
		FinalizedAt:     session.FinalizedAt,
		CreatedAt:       session.CreatedAt,
	}
}
