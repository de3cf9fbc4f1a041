package domain

import "time"

// TimeSlot carries the capacity configuration for one (date, time) unit.
// The committed reservation count is never stored here: it is derived by
// counting non-cancelled bookings, so a cancelled booking frees its unit
// without a counter update. Rows are created lazily on first reservation
// and exist mainly as the lock target serializing concurrent reserves.
type TimeSlot struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Date        string    `gorm:"type:varchar(10);uniqueIndex:idx_slots_date_time;not null" json:"date"`
	Time        string    `gorm:"type:varchar(5);uniqueIndex:idx_slots_date_time;not null" json:"time"`
	MaxBookings int       `gorm:"not null" json:"max_bookings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TimeSlot) TableName() string { return "time_slots" }
