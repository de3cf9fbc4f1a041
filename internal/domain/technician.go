package domain

import "time"

// Technician is a member of the workshop crew. IsAvailable is
// informational only: a technician may hold several active bookings,
// "busy" is derived from bookings in confirmed/in_progress.
type Technician struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(120);not null" json:"name"`
	Phone       string    `gorm:"type:varchar(32)" json:"phone"`
	Specialties string    `gorm:"type:varchar(255)" json:"specialties"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	TotalJobs   int64     `gorm:"default:0" json:"total_jobs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Technician) TableName() string { return "technicians" }
