package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop/internal/domain"
	"workshop/internal/domain/booking"
	"workshop/internal/pkg/logger"
)

type Service struct {
	db        *gorm.DB
	payments  *Repository
	bookings  *booking.Repository
	client    GatewayClient
	serverKey string
	log       *zap.Logger
}

func NewService(db *gorm.DB, payments *Repository, bookings *booking.Repository, client GatewayClient, serverKey string) *Service {
	return &Service{
		db:        db,
		payments:  payments,
		bookings:  bookings,
		client:    client,
		serverKey: serverKey,
		log:       logger.Get().Named("payment"),
	}
}

type InitiateResult struct {
	IsFree      bool   `json:"is_free"`
	OrderID     string `json:"order_id,omitempty"`
	SnapToken   string `json:"snap_token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Initiate issues a payment session for a booking. A zero-total booking
// short-circuits to paid/confirmed without contacting the gateway.
// Re-invoking for a still-unpaid booking issues a fresh session, which
// is how "retry payment" works; a gateway failure leaves the booking in
// pending and is safe to retry.
func (s *Service) Initiate(ctx context.Context, bookingID, userID int64, isAdmin bool) (*InitiateResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != userID {
		return nil, booking.ErrForbidden
	}
	if b.PaymentStatus == domain.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if b.Status.IsTerminal() {
		return nil, ErrNotPayable
	}

	if b.TotalPrice == 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := booking.GetForUpdateTx(tx, bookingID)
			if err != nil {
				return err
			}
			if locked.PaymentStatus == domain.PaymentPaid {
				return nil
			}
			if locked.Status.IsTerminal() {
				return ErrNotPayable
			}
			return booking.ConfirmOnPaymentTx(tx, locked)
		})
		if err != nil {
			return nil, err
		}
		s.log.Info("zero-total booking settled without gateway", zap.Int64("booking_id", bookingID))
		return &InitiateResult{IsFree: true}, nil
	}

	orderID := fmt.Sprintf("WSB-%d-%s", bookingID, uuid.NewString()[:8])
	session, err := s.client.CreateTransaction(ctx, SessionRequest{
		OrderID:       orderID,
		GrossAmount:   b.TotalPrice,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
	})
	if err != nil {
		s.log.Warn("gateway session request failed",
			zap.Int64("booking_id", bookingID),
			zap.Error(err))
		return nil, err
	}

	record := &domain.GatewayPayment{
		BookingID:   bookingID,
		OrderID:     orderID,
		GrossAmount: b.TotalPrice,
		SnapToken:   session.Token,
		Status:      domain.GatewayCreated,
		IssuedAt:    time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, err
	}

	return &InitiateResult{
		OrderID:     orderID,
		SnapToken:   session.Token,
		RedirectURL: session.RedirectURL,
	}, nil
}

// Notification is the callback body delivered by the gateway.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// severity orders gateway statuses so reconciliation only ever moves
// forward: an event ranked at or below the recorded status is a replay
// or an out-of-order delivery and is dropped.
var severity = map[domain.GatewayStatus]int{
	domain.GatewayCreated:    0,
	domain.GatewayPendingPay: 1,
	domain.GatewayDenied:     2,
	domain.GatewayCancelled:  2,
	domain.GatewayExpired:    2,
	domain.GatewaySettled:    3,
}

func mapGatewayStatus(transactionStatus, fraudStatus string) (domain.GatewayStatus, bool) {
	switch transactionStatus {
	case "settlement":
		return domain.GatewaySettled, true
	case "capture":
		if fraudStatus == "challenge" {
			return domain.GatewayPendingPay, true
		}
		return domain.GatewaySettled, true
	case "pending":
		return domain.GatewayPendingPay, true
	case "deny":
		return domain.GatewayDenied, true
	case "cancel":
		return domain.GatewayCancelled, true
	case "expire":
		return domain.GatewayExpired, true
	}
	return "", false
}

func toPaymentStatus(s domain.GatewayStatus) domain.PaymentStatus {
	switch s {
	case domain.GatewaySettled:
		return domain.PaymentPaid
	case domain.GatewayDenied:
		return domain.PaymentFailed
	case domain.GatewayCancelled:
		return domain.PaymentCancelled
	case domain.GatewayExpired:
		return domain.PaymentExpired
	}
	return domain.PaymentPending
}

// HandleNotification reconciles one asynchronous gateway callback into
// booking state. It is idempotent and monotonic; callers must treat
// ErrStaleCallback and ErrUnknownOrder as acknowledged drops, not
// delivery failures.
func (s *Service) HandleNotification(ctx context.Context, n Notification, rawBody string) error {
	if !s.verifySignature(n) {
		s.log.Warn("rejected callback with bad signature", zap.String("order_id", n.OrderID))
		return ErrInvalidSignature
	}

	record, err := s.payments.GetByOrderID(ctx, n.OrderID)
	if err != nil {
		if err == ErrUnknownOrder {
			s.log.Warn("callback for unknown order", zap.String("order_id", n.OrderID))
		}
		return err
	}

	next, ok := mapGatewayStatus(n.TransactionStatus, n.FraudStatus)
	if !ok {
		s.log.Warn("callback with unrecognized transaction status",
			zap.String("order_id", n.OrderID),
			zap.String("transaction_status", n.TransactionStatus))
		return ErrStaleCallback
	}

	if gross, err := strconv.ParseFloat(n.GrossAmount, 64); err != nil || gross != record.GrossAmount {
		s.log.Warn("callback gross amount mismatch",
			zap.String("order_id", n.OrderID),
			zap.String("reported", n.GrossAmount),
			zap.Float64("expected", record.GrossAmount))
		// Flag the attempt on the record for the audit trail; a later
		// correct settlement can still move it forward. Never touch a
		// settled record and never touch the booking.
		if severity[domain.GatewayDenied] > severity[record.Status] {
			if _, err := UpdateStatusTx(s.db.WithContext(ctx), n.OrderID, domain.GatewayDenied, n.TransactionID, rawBody); err != nil {
				s.log.Error("failed to flag mismatched callback", zap.String("order_id", n.OrderID), zap.Error(err))
			}
		}
		return ErrAmountMismatch
	}

	if next == record.Status {
		// Exact replay of an already-applied event: acknowledged no-op.
		return nil
	}
	if severity[next] <= severity[record.Status] {
		s.log.Warn("dropping stale gateway callback",
			zap.String("order_id", n.OrderID),
			zap.String("recorded", string(record.Status)),
			zap.String("incoming", string(next)))
		return ErrStaleCallback
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch next {
		case domain.GatewaySettled:
			return s.applySettlementTx(tx, record, n, rawBody)
		default:
			applied, err := UpdateStatusTx(tx, n.OrderID, next, n.TransactionID, rawBody)
			if err != nil {
				return err
			}
			if !applied {
				// A settlement committed between the severity pre-check
				// and this transaction; the failure event is obsolete.
				return nil
			}
			return s.applyFailureTx(tx, record, next)
		}
	})
}

func (s *Service) applySettlementTx(tx *gorm.DB, record *domain.GatewayPayment, n Notification, rawBody string) error {
	applied, err := MarkPaidIdempotentTx(tx, n.OrderID, n.TransactionID, rawBody, time.Now().UTC())
	if err != nil {
		return err
	}
	if !applied {
		// Lost a redelivery race after the severity pre-check; the
		// first delivery already promoted the booking.
		return nil
	}

	b, err := booking.GetForUpdateTx(tx, record.BookingID)
	if err != nil {
		return err
	}
	if b.Status == domain.BookingCancelled {
		// The money moved but the booking is gone: never resurrect it,
		// flag for a manual refund instead.
		s.log.Warn("settlement received for cancelled booking",
			zap.Int64("booking_id", b.ID),
			zap.String("order_id", n.OrderID))
		return nil
	}
	return booking.ConfirmOnPaymentTx(tx, b)
}

// applyFailureTx records a failed/cancelled/expired payment on the
// booking. The booking itself is deliberately not cancelled: the
// customer (or staff) decides whether to retry or cancel.
func (s *Service) applyFailureTx(tx *gorm.DB, record *domain.GatewayPayment, status domain.GatewayStatus) error {
	if status == domain.GatewayPendingPay {
		return nil
	}

	b, err := booking.GetForUpdateTx(tx, record.BookingID)
	if err != nil {
		return err
	}
	if b.PaymentStatus == domain.PaymentPaid {
		return nil
	}
	return booking.UpdatePaymentStatusTx(tx, b.ID, toPaymentStatus(status))
}

// verifySignature checks the SHA-512 over
// order_id + status_code + gross_amount + server key.
func (s *Service) verifySignature(n Notification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + s.serverKey))
	return hex.EncodeToString(sum[:]) == n.SignatureKey
}

func (s *Service) ListByBooking(ctx context.Context, bookingID, userID int64, isAdmin bool) ([]domain.GatewayPayment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != userID {
		return nil, booking.ErrForbidden
	}
	return s.payments.ListByBooking(ctx, bookingID)
}
