package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/internal/identity"
	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/pagination"
)

func TestGetByIDVisibility(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     ownerID,
		TotalPrice: decimal.NewFromInt(300),
		Status:     enums.OrderStatusProcessing,
	}
	svc := newTestService(t, &stubOrderRepo{orders: map[uuid.UUID]*models.Order{order.ID: order}})
	ctx := context.Background()

	owner := identity.User(ownerID, enums.UserRoleCustomer)
	if _, err := svc.GetByID(ctx, owner, order.ID); err != nil {
		t.Fatalf("owner must see the order: %v", err)
	}

	admin := identity.User(uuid.New(), enums.UserRoleAdmin)
	if _, err := svc.GetByID(ctx, admin, order.ID); err != nil {
		t.Fatalf("admin must see the order: %v", err)
	}

	stranger := identity.User(uuid.New(), enums.UserRoleCustomer)
	_, err := svc.GetByID(ctx, stranger, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign order must read as not found, got %v", err)
	}

	_, err = svc.GetByID(ctx, identity.Guest("g1"), order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("guests must be rejected, got %v", err)
	}
}

func TestAdminUpdateStatusSpellingShim(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusProcessing}
	svc := newTestService(t, &stubOrderRepo{orders: map[uuid.UUID]*models.Order{order.ID: order}})

	got, err := svc.AdminUpdateStatus(context.Background(), order.ID, "canceled")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected canonical Cancelled, got %q", got.Status)
	}
}

func TestAdminUpdateStatusDeliveredIsOneWay(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusProcessing}
	svc := newTestService(t, &stubOrderRepo{orders: map[uuid.UUID]*models.Order{order.ID: order}})
	ctx := context.Background()

	got, err := svc.AdminUpdateStatus(ctx, order.ID, "Delivered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDelivered || got.DeliveredAt == nil {
		t.Fatalf("Delivered must stamp delivery fields: %+v", got)
	}
	stampedAt := *got.DeliveredAt

	got, err = svc.AdminUpdateStatus(ctx, order.ID, "Shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.OrderStatusShipped {
		t.Fatalf("expected Shipped, got %q", got.Status)
	}
	if !got.IsDelivered || got.DeliveredAt == nil || !got.DeliveredAt.Equal(stampedAt) {
		t.Fatal("delivery fields must never be reverted")
	}
}

func TestAdminUpdateStatusDeliveredAgainRefreshesTimestamp(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusProcessing}
	svc := newTestService(t, &stubOrderRepo{orders: map[uuid.UUID]*models.Order{order.ID: order}})
	ctx := context.Background()

	clock := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return clock }

	got, err := svc.AdminUpdateStatus(ctx, order.ID, "Delivered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstStamp := *got.DeliveredAt

	clock = clock.Add(2 * time.Hour)
	got, err = svc.AdminUpdateStatus(ctx, order.ID, "Delivered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDelivered || got.DeliveredAt == nil {
		t.Fatalf("delivery fields must stay set: %+v", got)
	}
	if !got.DeliveredAt.After(firstStamp) {
		t.Fatal("repeated Delivered must refresh the delivery timestamp")
	}
}

func TestAdminUpdateStatusInvalid(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusProcessing}
	svc := newTestService(t, &stubOrderRepo{orders: map[uuid.UUID]*models.Order{order.ID: order}})

	_, err := svc.AdminUpdateStatus(context.Background(), order.ID, "Teleported")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminDeleteMissingOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}})
	err := svc.AdminDelete(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminListPaginates(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := &models.Order{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		repo.orders[order.ID] = order
		repo.pageRows = append(repo.pageRows, *order)
	}
	svc := newTestService(t, repo)

	result, err := svc.AdminList(context.Background(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected trimmed page of 2, got %d", len(result.Orders))
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor for a full page")
	}

	cursor, err := pagination.ParseCursor(result.NextCursor)
	if err != nil || cursor == nil {
		t.Fatalf("next cursor must round-trip: %v", err)
	}
	if cursor.ID != result.Orders[1].ID {
		t.Fatal("cursor must point at the last returned row")
	}
}

func TestAdminListRejectsBadCursor(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{})
	_, err := svc.AdminList(context.Background(), pagination.Params{Cursor: "!!!"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func newTestService(t *testing.T, repo OrderRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

type stubOrderRepo struct {
	orders   map[uuid.UUID]*models.Order
	pageRows []models.Order
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	if s.orders == nil {
		s.orders = map[uuid.UUID]*models.Order{}
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

func (s *stubOrderRepo) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	rows := s.pageRows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
