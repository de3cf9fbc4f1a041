package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"workshop/internal/domain"
	"workshop/internal/domain/booking"
)

const testServerKey = "SB-Mid-server-test"

type fakeGateway struct {
	calls int
	err   error
}

func (f *fakeGateway) CreateTransaction(ctx context.Context, req SessionRequest) (*Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Session{
		Token:       fmt.Sprintf("snap-token-%d", f.calls),
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/" + req.OrderID,
	}, nil
}

func setupTest(t *testing.T) (*Service, *fakeGateway, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Technician{}, &domain.TimeSlot{}, &domain.Booking{},
		&domain.BookingItem{}, &domain.GatewayPayment{},
	); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	gateway := &fakeGateway{}
	svc := NewService(db, NewRepository(db), booking.NewRepository(db), gateway, testServerKey)
	return svc, gateway, db
}

func seedBooking(t *testing.T, db *gorm.DB, total float64) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		UserID:          7,
		CustomerName:    "Dewi",
		CustomerPhone:   "+62-811-1111",
		BookingType:     domain.BookingServiceOnly,
		ScheduledDate:   "2026-09-07",
		ScheduledTime:   "09:00",
		ServiceLocation: domain.LocationWorkshop,
		TotalPrice:      total,
		Status:          domain.BookingPending,
		PaymentStatus:   domain.PaymentPending,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}
	return b
}

func reloadBooking(t *testing.T, db *gorm.DB, id int64) *domain.Booking {
	t.Helper()
	var b domain.Booking
	if err := db.First(&b, id).Error; err != nil {
		t.Fatalf("failed to reload booking: %v", err)
	}
	return &b
}

// sign produces the callback signature the gateway would send.
func sign(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func notification(orderID, status, gross string) Notification {
	return Notification{
		OrderID:           orderID,
		TransactionID:     "txn-" + orderID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       gross,
		SignatureKey:      sign(orderID, "200", gross),
	}
}

func TestInitiateIssuesSession(t *testing.T) {
	svc, gateway, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 277500)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if res.IsFree {
		t.Fatalf("priced booking must not short-circuit")
	}
	if res.SnapToken == "" || res.OrderID == "" {
		t.Fatalf("expected a session, got %+v", res)
	}
	if gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", gateway.calls)
	}

	var record domain.GatewayPayment
	if err := db.Where("order_id = ?", res.OrderID).First(&record).Error; err != nil {
		t.Fatalf("expected persisted payment record: %v", err)
	}
	if record.Status != domain.GatewayCreated || record.GrossAmount != 277500 {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestInitiateRetryIssuesFreshSession(t *testing.T) {
	svc, gateway, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 277500)

	first, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("first Initiate returned error: %v", err)
	}
	second, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("second Initiate returned error: %v", err)
	}

	if first.OrderID == second.OrderID {
		t.Fatalf("retry must issue a fresh order id")
	}
	if gateway.calls != 2 {
		t.Fatalf("expected two gateway calls, got %d", gateway.calls)
	}

	rows, err := svc.ListByBooking(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("ListByBooking returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two payment attempts, got %d", len(rows))
	}
}

func TestInitiateFreeBookingSkipsGateway(t *testing.T) {
	svc, gateway, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 0)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if !res.IsFree {
		t.Fatalf("zero-total booking must settle as free")
	}
	if gateway.calls != 0 {
		t.Fatalf("free booking must never contact the gateway, got %d calls", gateway.calls)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPaid || got.Status != domain.BookingConfirmed {
		t.Fatalf("expected paid/confirmed, got %s/%s", got.PaymentStatus, got.Status)
	}
}

func TestInitiateGuards(t *testing.T) {
	svc, gateway, db := setupTest(t)
	ctx := context.Background()

	paid := seedBooking(t, db, 100000)
	if err := db.Model(&domain.Booking{}).Where("id = ?", paid.ID).
		Update("payment_status", domain.PaymentPaid).Error; err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}
	if _, err := svc.Initiate(ctx, paid.ID, 7, false); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	cancelled := seedBooking(t, db, 100000)
	if err := db.Model(&domain.Booking{}).Where("id = ?", cancelled.ID).
		Update("status", domain.BookingCancelled).Error; err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}
	if _, err := svc.Initiate(ctx, cancelled.ID, 7, false); !errors.Is(err, ErrNotPayable) {
		t.Fatalf("expected ErrNotPayable, got %v", err)
	}

	foreign := seedBooking(t, db, 100000)
	if _, err := svc.Initiate(ctx, foreign.ID, 99, false); !errors.Is(err, booking.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if gateway.calls != 0 {
		t.Fatalf("guard failures must not reach the gateway, got %d calls", gateway.calls)
	}
}

func TestInitiateGatewayFailureLeavesBookingPending(t *testing.T) {
	svc, gateway, db := setupTest(t)
	ctx := context.Background()
	gateway.err = fmt.Errorf("%w: connection refused", ErrGatewayUnavailable)
	b := seedBooking(t, db, 100000)

	_, err := svc.Initiate(ctx, b.ID, 7, false)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPending || got.Status != domain.BookingPending {
		t.Fatalf("failed session must leave booking untouched, got %s/%s", got.PaymentStatus, got.Status)
	}

	var count int64
	db.Model(&domain.GatewayPayment{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed session must not persist a payment record, got %d", count)
	}
}

func TestSettlementPromotesAndReplayIsNoOp(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 277500)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}

	n := notification(res.OrderID, "settlement", "277500.00")
	if err := svc.HandleNotification(ctx, n, "{}"); err != nil {
		t.Fatalf("HandleNotification returned error: %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPaid || got.Status != domain.BookingConfirmed {
		t.Fatalf("expected paid/confirmed, got %s/%s", got.PaymentStatus, got.Status)
	}

	// Exact redelivery acknowledges without re-applying side effects.
	if err := svc.HandleNotification(ctx, n, "{}"); err != nil {
		t.Fatalf("replayed settlement must be a no-op, got %v", err)
	}
	var record domain.GatewayPayment
	if err := db.Where("order_id = ?", res.OrderID).First(&record).Error; err != nil {
		t.Fatalf("failed to reload record: %v", err)
	}
	if record.Status != domain.GatewaySettled || record.PaidAt == nil {
		t.Fatalf("expected settled record with paid_at, got %+v", record)
	}
}

func TestStaleCallbackAfterSettlementDropped(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if err := svc.HandleNotification(ctx, notification(res.OrderID, "settlement", "100000"), "{}"); err != nil {
		t.Fatalf("settlement returned error: %v", err)
	}

	// A late "pending" must never regress a settled payment.
	err = svc.HandleNotification(ctx, notification(res.OrderID, "pending", "100000"), "{}")
	if !errors.Is(err, ErrStaleCallback) {
		t.Fatalf("expected ErrStaleCallback, got %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("stale callback must not regress the booking, got %s", got.PaymentStatus)
	}
}

func TestLateFailureNeverRegressesSettledRecord(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if err := svc.HandleNotification(ctx, notification(res.OrderID, "settlement", "100000"), "{}"); err != nil {
		t.Fatalf("settlement returned error: %v", err)
	}

	// A failure delivery that read the record before the settlement
	// committed reaches the write path directly; the conditional update
	// must match zero rows.
	err = db.Transaction(func(tx *gorm.DB) error {
		applied, err := UpdateStatusTx(tx, res.OrderID, domain.GatewayDenied, "txn-late", "{}")
		if err != nil {
			return err
		}
		if applied {
			t.Fatalf("settled record must not accept a failure status")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction returned error: %v", err)
	}

	var record domain.GatewayPayment
	if err := db.Where("order_id = ?", res.OrderID).First(&record).Error; err != nil {
		t.Fatalf("failed to reload record: %v", err)
	}
	if record.Status != domain.GatewaySettled {
		t.Fatalf("expected record to stay settled, got %s", record.Status)
	}
	if got := reloadBooking(t, db, b.ID); got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected booking to stay paid, got %s", got.PaymentStatus)
	}
}

func TestCaptureWithFraudChallengeStaysPending(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}

	n := notification(res.OrderID, "capture", "100000")
	n.FraudStatus = "challenge"
	if err := svc.HandleNotification(ctx, n, "{}"); err != nil {
		t.Fatalf("HandleNotification returned error: %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPending || got.Status != domain.BookingPending {
		t.Fatalf("challenged capture must not promote, got %s/%s", got.PaymentStatus, got.Status)
	}
}

func TestFailureNeverCancelsBooking(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if err := svc.HandleNotification(ctx, notification(res.OrderID, "expire", "100000"), "{}"); err != nil {
		t.Fatalf("HandleNotification returned error: %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentExpired {
		t.Fatalf("expected payment_status expired, got %s", got.PaymentStatus)
	}
	if got.Status != domain.BookingPending {
		t.Fatalf("a failed payment must not cancel the booking, got %s", got.Status)
	}
}

func TestSettlementForCancelledBookingNotPromoted(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if err := db.Model(&domain.Booking{}).Where("id = ?", b.ID).
		Update("status", domain.BookingCancelled).Error; err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}

	if err := svc.HandleNotification(ctx, notification(res.OrderID, "settlement", "100000"), "{}"); err != nil {
		t.Fatalf("HandleNotification returned error: %v", err)
	}

	// The money is recorded against the session for the refund trail,
	// but the booking itself stays cancelled and unpaid.
	var record domain.GatewayPayment
	if err := db.Where("order_id = ?", res.OrderID).First(&record).Error; err != nil {
		t.Fatalf("failed to reload record: %v", err)
	}
	if record.Status != domain.GatewaySettled {
		t.Fatalf("expected settled record, got %s", record.Status)
	}
	got := reloadBooking(t, db, b.ID)
	if got.Status != domain.BookingCancelled || got.PaymentStatus == domain.PaymentPaid {
		t.Fatalf("cancelled booking must never be resurrected, got %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestBadSignatureRejected(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}

	n := notification(res.OrderID, "settlement", "100000")
	n.SignatureKey = "forged"
	if err := svc.HandleNotification(ctx, n, "{}"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPending {
		t.Fatalf("forged callback must not mutate state, got %s", got.PaymentStatus)
	}
}

func TestAmountMismatchRejected(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()
	b := seedBooking(t, db, 100000)

	res, err := svc.Initiate(ctx, b.ID, 7, false)
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}

	err = svc.HandleNotification(ctx, notification(res.OrderID, "settlement", "1"), "{}")
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}

	got := reloadBooking(t, db, b.ID)
	if got.PaymentStatus != domain.PaymentPending {
		t.Fatalf("mismatched amount must not mark paid, got %s", got.PaymentStatus)
	}

	// The attempt is flagged on the record for the audit trail.
	var record domain.GatewayPayment
	if err := db.Where("order_id = ?", res.OrderID).First(&record).Error; err != nil {
		t.Fatalf("failed to reload record: %v", err)
	}
	if record.Status != domain.GatewayDenied {
		t.Fatalf("expected flagged record, got %s", record.Status)
	}

	// A later callback with the correct amount still settles.
	if err := svc.HandleNotification(ctx, notification(res.OrderID, "settlement", "100000"), "{}"); err != nil {
		t.Fatalf("correct settlement after mismatch returned error: %v", err)
	}
	if got := reloadBooking(t, db, b.ID); got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected paid after correct settlement, got %s", got.PaymentStatus)
	}
}

func TestUnknownOrderRejected(t *testing.T) {
	svc, _, _ := setupTest(t)
	err := svc.HandleNotification(context.Background(), notification("WSB-404-deadbeef", "settlement", "100000"), "{}")
	if !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("expected ErrUnknownOrder, got %v", err)
	}
}
