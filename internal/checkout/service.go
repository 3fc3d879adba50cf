package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/internal/cart"
	"github.com/happycart-io/happycart-backend/internal/orders"
	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/types"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the checkout session lifecycle:
// Pending/unpaid -> Paid -> Finalized (terminal).
type Service interface {
	CreateSession(ctx context.Context, userID uuid.UUID, input CreateSessionInput) (*SessionDTO, error)
	MarkPaid(ctx context.Context, userID, sessionID uuid.UUID, input MarkPaidInput) (*SessionDTO, error)
	Finalize(ctx context.Context, userID, sessionID uuid.UUID) (*models.Order, error)
}

// CreateSessionInput captures a prospective purchase snapshot.
type CreateSessionInput struct {
	Items           types.OrderItems
	ShippingAddress types.Address
	PaymentMethod   string
	TotalPrice      decimal.Decimal
}

// MarkPaidInput carries the gateway confirmation payload.
type MarkPaidInput struct {
	PaymentStatus  string
	PaymentDetails types.JSONMap
}

type service struct {
	repo   CheckoutRepository
	orders orders.OrderRepository
	carts  cart.CartRepository
	tx     txRunner
	now    func() time.Time
}

// NewService builds a checkout service backed by the provided stack.
func NewService(repo CheckoutRepository, ordersRepo orders.OrderRepository, carts cart.CartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:   repo,
		orders: ordersRepo,
		carts:  carts,
		tx:     tx,
		now:    time.Now,
	}, nil
}

// CreateSession snapshots the intended purchase for an authenticated user.
// The client-supplied total is re-validated against the line items instead of
// being trusted.
func (s *service) CreateSession(ctx context.Context, userID uuid.UUID, input CreateSessionInput) (*SessionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	if input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout item product id is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout item quantity must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout item price cannot be negative")
		}
	}
	if computed := input.Items.Total(); !computed.Equal(input.TotalPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price does not match items").
			WithDetails(map[string]any{"computed": computed.String(), "submitted": input.TotalPrice.String()})
	}

	session := &models.CheckoutSession{
		UserID:          userID,
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		TotalPrice:      input.TotalPrice,
		PaymentStatus:   enums.PaymentStatusPending,
	}
	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return ToDTO(created), nil
}

// MarkPaid records the payment confirmation. Only a status that normalizes to
// "paid" is accepted; anything else leaves the session untouched. Re-marking
// an already paid session is allowed and re-applies the same fields.
func (s *service) MarkPaid(ctx context.Context, userID, sessionID uuid.UUID, input MarkPaidInput) (*SessionDTO, error) {
	session, err := s.loadOwnedSession(ctx, s.repo, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session already finalized")
	}
	if !enums.IsPaidLiteral(input.PaymentStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}

	updatedRows, err := s.repo.MarkPaid(ctx, session.ID, s.now().UTC(), input.PaymentDetails)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark session paid")
	}
	if updatedRows == 0 {
		// A concurrent finalize won between the read above and the update.
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session already finalized")
	}

	updated, err := s.repo.FindByID(ctx, session.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload session")
	}
	return ToDTO(updated), nil
}

// Finalize materializes an order from a paid session exactly once. The
// finalization claim, the order insert and the cart cleanup commit together;
// a losing concurrent call observes zero claimed rows and fails.
func (s *service) Finalize(ctx context.Context, userID, sessionID uuid.UUID) (*models.Order, error) {
	var order *models.Order

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		session, err := s.loadOwnedSession(ctx, txRepo, userID, sessionID)
		if err != nil {
			return err
		}

		finalizedAt := s.now().UTC()
		claimed, err := txRepo.ClaimFinalization(ctx, session.ID, finalizedAt)
		if err != nil {
			return err
		}
		if claimed == 0 {
			if !session.IsPaid {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session is not paid")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session already finalized")
		}

		created, err := s.orders.WithTx(tx).Create(ctx, &models.Order{
			UserID:          session.UserID,
			OrderItems:      session.Items,
			ShippingAddress: session.ShippingAddress,
			PaymentMethod:   session.PaymentMethod,
			TotalPrice:      session.TotalPrice,
			IsPaid:          true,
			PaidAt:          session.PaidAt,
			Status:          enums.OrderStatusProcessing,
			PaymentStatus:   enums.PaymentStatusPaid,
			PaymentDetails:  session.PaymentDetails,
		})
		if err != nil {
			return err
		}

		// Purchase complete; the user's active cart goes away with it.
		if err := s.carts.WithTx(tx).DeleteByUser(ctx, session.UserID); err != nil {
			return err
		}

		order = created
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize checkout")
	}

	return order, nil
}

// loadOwnedSession hides foreign sessions behind not-found.
func (s *service) loadOwnedSession(ctx context.Context, repo CheckoutRepository, userID, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	session, err := repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if session.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return session, nil
}
