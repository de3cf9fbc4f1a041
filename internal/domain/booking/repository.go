package booking

import (
	"context"
	"errors"
	"time"

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

func (r *Repository) DB() *gorm.DB { return r.db }

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Technician").
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetForUpdateTx loads a booking with a row lock inside tx; every
// status or payment mutation goes through this to keep the state
// machine race-free.
func GetForUpdateTx(tx *gorm.DB, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func CreateTx(tx *gorm.DB, b *domain.Booking) error {
	return tx.Create(b).Error
}

func UpdateStatusTx(tx *gorm.DB, id int64, status domain.BookingStatus) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == domain.BookingCancelled {
		now := time.Now().UTC()
		updates["cancelled_at"] = &now
	}
	return tx.Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func UpdatePaymentStatusTx(tx *gorm.DB, id int64, status domain.PaymentStatus) error {
	return tx.Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": status,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func SetTechnicianTx(tx *gorm.DB, id int64, technicianID *int64) error {
	return tx.Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"technician_id": technicianID,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var rows []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Technician").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type ListFilters struct {
	Status  string
	Date    string
	Page    int
	PerPage int
}

func (r *Repository) List(ctx context.Context, filters ListFilters) ([]domain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Booking{})

	if filters.Status != "" && filters.Status != "all" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Date != "" {
		query = query.Where("scheduled_date = ?", filters.Date)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.PerPage <= 0 {
		filters.PerPage = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	offset := (filters.Page - 1) * filters.PerPage

	var rows []domain.Booking
	err := query.
		Preload("Items").
		Preload("Technician").
		Order("created_at DESC").
		Limit(filters.PerPage).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DashboardStats aggregates the admin dashboard numbers: bookings per
// lifecycle state and revenue summed over paid bookings only.
type DashboardStats struct {
	Total      int64   `json:"total"`
	Pending    int64   `json:"pending"`
	Confirmed  int64   `json:"confirmed"`
	InProgress int64   `json:"in_progress"`
	Completed  int64   `json:"completed"`
	Cancelled  int64   `json:"cancelled"`
	Revenue    float64 `json:"revenue"`
}

func (r *Repository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := r.db.WithContext(ctx).Model(&domain.Booking{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	byStatus := map[domain.BookingStatus]*int64{
		domain.BookingPending:    &stats.Pending,
		domain.BookingConfirmed:  &stats.Confirmed,
		domain.BookingInProgress: &stats.InProgress,
		domain.BookingCompleted:  &stats.Completed,
		domain.BookingCancelled:  &stats.Cancelled,
	}
	for status, dst := range byStatus {
		if err := r.db.WithContext(ctx).Model(&domain.Booking{}).
			Where("status = ?", status).
			Count(dst).Error; err != nil {
			return nil, err
		}
	}

	var revenue *float64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Select("SUM(total_price)").
		Where("payment_status = ?", domain.PaymentPaid).
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue != nil {
		stats.Revenue = *revenue
	}
	return stats, nil
}
