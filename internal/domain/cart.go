package domain

import "time"

// CartLine is one row of a customer's booking draft. UnitPrice is the
// discount-adjusted catalog price captured at add-to-cart time and is
// not refreshed afterwards.
type CartLine struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Kind      ItemKind  `gorm:"type:varchar(10);not null" json:"kind"`
	ItemID    int64     `gorm:"not null" json:"item_id"`
	Name      string    `gorm:"type:varchar(120)" json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `gorm:"default:1" json:"quantity"`
	Position  int       `gorm:"default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartLine) TableName() string { return "cart_lines" }
