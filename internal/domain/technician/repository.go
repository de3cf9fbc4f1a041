package technician

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"workshop/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, t *domain.Technician) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	var t domain.Technician
	err := r.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Technician, error) {
	var rows []domain.Technician
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Technician{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveJobs derives how busy each technician is: bookings in
// confirmed/in_progress referencing them. There is no stored counter to
// drift out of sync.
func (r *Repository) ActiveJobs(ctx context.Context) (map[int64]int64, error) {
	type row struct {
		TechnicianID int64 `gorm:"column:technician_id"`
		Cnt          int64 `gorm:"column:cnt"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Select("technician_id, COUNT(1) AS cnt").
		Where("technician_id IS NOT NULL").
		Where("status IN ?", []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress}).
		Group("technician_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.TechnicianID] = r.Cnt
	}
	return out, nil
}
