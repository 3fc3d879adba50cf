package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/internal/identity"
	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/pagination"
)

// Service exposes the order ledger: customer reads plus the admin
// management surface.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetByID(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderDTO, error)
	AdminList(ctx context.Context, params pagination.Params) (*OrderListResult, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error)
	AdminDelete(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo OrderRepository
	now  func() time.Time
}

// NewService builds an order ledger service.
func NewService(repo OrderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ListForUser returns the caller's orders, newest created first.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return ToDTOs(rows), nil
}

// GetByID returns an order visible to the caller. Owners and admins see the
// order; anyone else gets not-found rather than forbidden, hiding existence.
func (s *service) GetByID(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if !actor.IsUser() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID() && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ToDTO(order), nil
}

// AdminList returns one cursor page of the full ledger.
func (s *service) AdminList(ctx context.Context, params pagination.Params) (*OrderListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &OrderListResult{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	result.Orders = ToDTOs(rows)
	return result, nil
}

// AdminUpdateStatus transitions the fulfillment status. "canceled" is folded
// into the canonical "Cancelled" spelling. Setting Delivered stamps the
// delivery fields, refreshing the timestamp on repeats; moving away later
// never clears them.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = parsed
	if parsed == enums.OrderStatusDelivered {
		now := s.now().UTC()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	updated, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return ToDTO(updated), nil
}

// AdminDelete removes the order from the ledger.
func (s *service) AdminDelete(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
