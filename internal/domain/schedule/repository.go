package schedule

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LockSlotForUpdate returns the slot row for (date, time) with a row
// lock held for the rest of tx, creating it with the default capacity on
// first use. Losing a create race falls back to locking the winner's
// row, so every reserve/cancel on the same slot serializes here.
func LockSlotForUpdate(tx *gorm.DB, date, timeStr string, defaultCapacity int) (*domain.TimeSlot, error) {
	var slot domain.TimeSlot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("date = ? AND time = ?", date, timeStr).
		First(&slot).Error
	if err == nil {
		return &slot, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	slot = domain.TimeSlot{Date: date, Time: timeStr, MaxBookings: defaultCapacity}
	if err := tx.Create(&slot).Error; err != nil {
		if isUniqueConstraintError(err) {
			var won domain.TimeSlot
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("date = ? AND time = ?", date, timeStr).
				First(&won).Error; err != nil {
				return nil, err
			}
			return &won, nil
		}
		return nil, err
	}
	return &slot, nil
}

// CountActive counts the bookings holding a capacity unit of the slot.
// Cancelled bookings are excluded, which is how cancellation releases
// its unit without any counter write.
func CountActive(tx *gorm.DB, date, timeStr string) (int64, error) {
	var count int64
	err := tx.Model(&domain.Booking{}).
		Where("scheduled_date = ? AND scheduled_time = ?", date, timeStr).
		Where("status <> ?", domain.BookingCancelled).
		Count(&count).Error
	return count, err
}

func (r *Repository) GetSlot(ctx context.Context, date, timeStr string) (*domain.TimeSlot, error) {
	var slot domain.TimeSlot
	err := r.db.WithContext(ctx).
		Where("date = ? AND time = ?", date, timeStr).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// CountsForDate returns the derived active-booking count per time for
// one date in a single query.
func (r *Repository) CountsForDate(ctx context.Context, date string) (map[string]int64, error) {
	type row struct {
		ScheduledTime string `gorm:"column:scheduled_time"`
		Cnt           int64  `gorm:"column:cnt"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Select("scheduled_time, COUNT(1) AS cnt").
		Where("scheduled_date = ?", date).
		Where("status <> ?", domain.BookingCancelled).
		Group("scheduled_time").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ScheduledTime] = r.Cnt
	}
	return counts, nil
}

// CapacitiesForDate returns explicitly configured capacities for a date.
func (r *Repository) CapacitiesForDate(ctx context.Context, date string) (map[string]int, error) {
	var slots []domain.TimeSlot
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	caps := make(map[string]int, len(slots))
	for _, s := range slots {
		caps[s.Time] = s.MaxBookings
	}
	return caps, nil
}

// UpsertCapacity sets max_bookings for a slot, creating the row when the
// slot has never been touched.
func (r *Repository) UpsertCapacity(ctx context.Context, date, timeStr string, max int) (*domain.TimeSlot, error) {
	var slot *domain.TimeSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := LockSlotForUpdate(tx, date, timeStr, max)
		if err != nil {
			return err
		}
		if s.MaxBookings != max {
			if err := tx.Model(&domain.TimeSlot{}).
				Where("id = ?", s.ID).
				Update("max_bookings", max).Error; err != nil {
				return err
			}
			s.MaxBookings = max
		}
		slot = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
