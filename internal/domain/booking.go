package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentExpired   PaymentStatus = "expired"
)

type BookingType string

const (
	BookingSparepartOnly       BookingType = "sparepart_only"
	BookingServiceOnly         BookingType = "service_only"
	BookingSparepartAndService BookingType = "sparepart_and_service"
)

type ServiceLocation string

const (
	LocationWorkshop ServiceLocation = "workshop"
	LocationOnsite   ServiceLocation = "onsite"
)

type ItemKind string

const (
	KindSparepart ItemKind = "sparepart"
	KindService   ItemKind = "service"
)

// Booking is the central entity of the platform. Customer, vehicle and
// line-item fields are snapshots copied at checkout; they are never
// re-derived from the catalog afterwards. TotalPrice is the immutable
// ground truth for payment.
type Booking struct {
	ID     int64 `gorm:"primaryKey" json:"id"`
	UserID int64 `gorm:"index;not null" json:"user_id"`

	CustomerName  string `gorm:"type:varchar(120)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(32)" json:"customer_phone"`
	CustomerEmail string `gorm:"type:varchar(120)" json:"customer_email"`
	VehiclePlate  string `gorm:"type:varchar(16)" json:"vehicle_plate"`
	VehicleModel  string `gorm:"type:varchar(80)" json:"vehicle_model"`

	BookingType BookingType `gorm:"type:varchar(24)" json:"booking_type"`

	ScheduledDate string `gorm:"type:varchar(10);index:idx_bookings_slot" json:"scheduled_date"`
	ScheduledTime string `gorm:"type:varchar(5);index:idx_bookings_slot" json:"scheduled_time"`

	ServiceLocation ServiceLocation `gorm:"type:varchar(10)" json:"service_location"`
	Address         string          `gorm:"type:text" json:"address,omitempty"`

	TotalPrice float64 `json:"total_price"`

	Status        BookingStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);default:'pending'" json:"payment_status"`

	TechnicianID *int64      `gorm:"index" json:"technician_id,omitempty"`
	Technician   *Technician `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`

	Items []BookingItem `gorm:"foreignKey:BookingID" json:"items,omitempty"`

	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// BookingItem is a priced line snapshot. UnitPrice is the discount-adjusted
// price captured when the item entered the cart.
type BookingItem struct {
	ID        int64    `gorm:"primaryKey" json:"id"`
	BookingID int64    `gorm:"index;not null" json:"booking_id"`
	Kind      ItemKind `gorm:"type:varchar(10);not null" json:"kind"`
	ItemID    int64    `gorm:"not null" json:"item_id"`
	Name      string   `gorm:"type:varchar(120)" json:"name"`
	UnitPrice float64  `json:"unit_price"`
	Quantity  int      `gorm:"default:1" json:"quantity"`
}

func (BookingItem) TableName() string { return "booking_items" }

// IsTerminal reports whether no further lifecycle transition is legal.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}
