package domain

import (
	"math"
	"time"
)

// Sparepart and ServiceOffering are the catalog boundary. The booking
// core reads them once per add-to-cart to capture a price snapshot.
type Sparepart struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(120);not null" json:"name"`
	Price           float64   `gorm:"not null" json:"price"`
	DiscountPercent float64   `gorm:"default:0" json:"discount_percent"`
	Stock           int       `gorm:"default:0" json:"stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Sparepart) TableName() string { return "spareparts" }

type ServiceOffering struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(120);not null" json:"name"`
	Price           float64   `gorm:"not null" json:"price"`
	DiscountPercent float64   `gorm:"default:0" json:"discount_percent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ServiceOffering) TableName() string { return "service_offerings" }

func (s Sparepart) DiscountedPrice() float64 {
	return discounted(s.Price, s.DiscountPercent)
}

func (s ServiceOffering) DiscountedPrice() float64 {
	return discounted(s.Price, s.DiscountPercent)
}

func discounted(price, percent float64) float64 {
	if percent <= 0 {
		return price
	}
	return math.Round(price * (1 - percent/100))
}
