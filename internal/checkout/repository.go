package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/enums"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

// CheckoutRepository defines persistence for checkout sessions.
type CheckoutRepository interface {
	WithTx(tx *gorm.DB) CheckoutRepository
	Create(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error)
	// MarkPaid applies the paid fields to a session that has not finalized.
	// It returns the number of rows updated, which is zero when the session
	// is already terminal.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, details types.JSONMap) (int64, error)
	// ClaimFinalization flips is_finalized on a paid, not yet finalized
	// session. The conditional update is the exactly-once gate: it returns
	// the number of rows claimed, which is zero when the session was unpaid
	// or already finalized.
	ClaimFinalization(ctx context.Context, id uuid.UUID, finalizedAt time.Time) (int64, error)
}

// Repository wires checkout session persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CheckoutRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new session.
func (r *Repository) Create(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	if session.PaymentStatus == "" {
		session.PaymentStatus = enums.PaymentStatusPending
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// FindByID loads a session by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkPaid applies the paid fields to the session. The is_finalized guard
// keeps a racing payment confirmation from mutating a terminal session after
// its snapshot was already ordered.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, details types.JSONMap) (int64, error) {
	// Struct-based update so the jsonb serializer handles payment_details.
	result := r.db.WithContext(ctx).
		Model(&models.CheckoutSession{}).
		Where("id = ? AND is_finalized = ?", id, false).
		Select("is_paid", "payment_status", "paid_at", "payment_details").
		Updates(&models.CheckoutSession{
			IsPaid:         true,
			PaymentStatus:  enums.PaymentStatusPaid,
			PaidAt:         &paidAt,
			PaymentDetails: details,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ClaimFinalization performs the check-and-set finalization update.
func (r *Repository) ClaimFinalization(ctx context.Context, id uuid.UUID, finalizedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CheckoutSession{}).
		Where("id = ? AND is_paid = ? AND is_finalized = ?", id, true, false).
		Updates(map[string]any{
			"is_finalized": true,
			"finalized_at": finalizedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
