package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"workshop/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *domain.GatewayPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*domain.GatewayPayment, error) {
	var p domain.GatewayPayment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, err
	}
	return &p, nil
}

// MarkPaidIdempotentTx records a settlement exactly once. The
// conditional update means a redelivered settlement callback matches
// zero rows and reports applied=false, so side effects never run twice.
func MarkPaidIdempotentTx(tx *gorm.DB, orderID, transactionID, rawBody string, paidAt time.Time) (bool, error) {
	res := tx.Model(&domain.GatewayPayment{}).
		Where("order_id = ? AND status <> ?", orderID, domain.GatewaySettled).
		Updates(map[string]any{
			"status":         domain.GatewaySettled,
			"transaction_id": transactionID,
			"raw_body":       rawBody,
			"paid_at":        &paidAt,
			"last_callback":  &paidAt,
			"updated_at":     paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatusTx moves the record to a non-settled gateway status. The
// conditional guard mirrors MarkPaidIdempotentTx: a failure callback
// that commits after a racing settlement for the same order matches
// zero rows instead of regressing the settled record. Reports whether
// this call applied.
func UpdateStatusTx(tx *gorm.DB, orderID string, status domain.GatewayStatus, transactionID, rawBody string) (bool, error) {
	now := time.Now().UTC()
	res := tx.Model(&domain.GatewayPayment{}).
		Where("order_id = ? AND status <> ?", orderID, domain.GatewaySettled).
		Updates(map[string]any{
			"status":         status,
			"transaction_id": transactionID,
			"raw_body":       rawBody,
			"last_callback":  &now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.GatewayPayment, error) {
	var rows []domain.GatewayPayment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
