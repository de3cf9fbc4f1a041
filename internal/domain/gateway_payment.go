package domain

import "time"

type GatewayStatus string

const (
	GatewayCreated    GatewayStatus = "created"
	GatewayPendingPay GatewayStatus = "pending"
	GatewaySettled    GatewayStatus = "settlement"
	GatewayDenied     GatewayStatus = "deny"
	GatewayCancelled  GatewayStatus = "cancel"
	GatewayExpired    GatewayStatus = "expire"
)

// GatewayPayment is one payment session issued against a booking.
// Retrying payment creates a new row with a fresh OrderID; the gateway
// reconciles callbacks by OrderID.
type GatewayPayment struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	BookingID     int64         `gorm:"index;not null" json:"booking_id"`
	OrderID       string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	GrossAmount   float64       `gorm:"not null" json:"gross_amount"`
	SnapToken     string        `gorm:"type:varchar(128)" json:"snap_token"`
	TransactionID string        `gorm:"type:varchar(64)" json:"transaction_id"`
	Status        GatewayStatus `gorm:"type:varchar(20);default:'created';index" json:"status"`
	RawBody       string        `gorm:"type:text" json:"-"`
	IssuedAt      time.Time     `json:"issued_at"`
	LastCallback  *time.Time    `json:"last_callback,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (GatewayPayment) TableName() string { return "gateway_payments" }
