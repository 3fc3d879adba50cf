package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS checkout_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  items TEXT NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL,
  total_price NUMERIC NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'Pending',
  is_paid BOOLEAN NOT NULL DEFAULT FALSE,
  paid_at DATETIME,
  payment_details TEXT,
  is_finalized BOOLEAN NOT NULL DEFAULT FALSE,
  finalized_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedSessionRow(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.CheckoutSession {
	t.Helper()

	session := &models.CheckoutSession{
		ID:     uuid.New(),
		UserID: userID,
		Items: types.OrderItems{
			{ProductID: uuid.New(), Name: "Basic Tee", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2},
		},
		PaymentMethod: "card",
		TotalPrice:    decimal.RequireFromString("50.00"),
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func TestRepositoryMarkPaid(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedSessionRow(t, db, uuid.New())
	paidAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	updated, err := repo.MarkPaid(ctx, seeded.ID, paidAt, types.JSONMap{"transactionId": "tx-1"})
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)

	got, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.True(t, got.IsPaid)
	require.Equal(t, enums.PaymentStatusPaid, got.PaymentStatus)
	require.NotNil(t, got.PaidAt)
	require.Equal(t, "tx-1", got.PaymentDetails["transactionId"])
	require.False(t, got.IsFinalized)
}

func TestRepositoryMarkPaidSkipsFinalizedSession(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedSessionRow(t, db, uuid.New())
	firstPaidAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	updated, err := repo.MarkPaid(ctx, seeded.ID, firstPaidAt, types.JSONMap{"transactionId": "tx-first"})
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)

	claimed, err := repo.ClaimFinalization(ctx, seeded.ID, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, claimed)

	// A late confirmation must not touch the terminal session.
	updated, err = repo.MarkPaid(ctx, seeded.ID, firstPaidAt.Add(time.Hour), types.JSONMap{"transactionId": "tx-late"})
	require.NoError(t, err)
	require.Zero(t, updated)

	got, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "tx-first", got.PaymentDetails["transactionId"])
	require.True(t, got.PaidAt.Equal(firstPaidAt))
}

func TestRepositoryClaimFinalizationIsConditional(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedSessionRow(t, db, uuid.New())
	finalizedAt := time.Now().UTC()

	// Unpaid sessions cannot be claimed.
	claimed, err := repo.ClaimFinalization(ctx, seeded.ID, finalizedAt)
	require.NoError(t, err)
	require.Zero(t, claimed)

	updated, err := repo.MarkPaid(ctx, seeded.ID, time.Now().UTC(), nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)

	claimed, err = repo.ClaimFinalization(ctx, seeded.ID, finalizedAt)
	require.NoError(t, err)
	require.EqualValues(t, 1, claimed)

	// The second claim loses.
	claimed, err = repo.ClaimFinalization(ctx, seeded.ID, finalizedAt)
	require.NoError(t, err)
	require.Zero(t, claimed)

	got, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.True(t, got.IsFinalized)
	require.NotNil(t, got.FinalizedAt)
}
