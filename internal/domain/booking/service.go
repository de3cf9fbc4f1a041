package booking

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop/internal/domain"
	"workshop/internal/domain/cart"
	"workshop/internal/domain/schedule"
	"workshop/internal/pkg/logger"
)

type Service struct {
	db       *gorm.DB
	repo     *Repository
	carts    *cart.Repository
	schedule *schedule.Service
	log      *zap.Logger
}

func NewService(db *gorm.DB, repo *Repository, carts *cart.Repository, sched *schedule.Service) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		carts:    carts,
		schedule: sched,
		log:      logger.Get().Named("booking"),
	}
}

type CheckoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	VehiclePlate  string `json:"vehicle_plate"`
	VehicleModel  string `json:"vehicle_model"`

	ScheduledDate string `json:"scheduled_date" validate:"required"`
	ScheduledTime string `json:"scheduled_time" validate:"required"`

	ServiceLocation string `json:"service_location" validate:"required,oneof=workshop onsite"`
	Address         string `json:"address"`

	Notes string `json:"notes"`
}

// Checkout converts the customer's cart draft into a durable booking:
// reserve one slot unit, snapshot the lines, price once, persist in
// pending/pending and destroy the cart, all in one transaction, so a
// failed reservation never leaves a half-created booking.
func (s *Service) Checkout(ctx context.Context, userID int64, req CheckoutRequest) (*domain.Booking, error) {
	location := domain.ServiceLocation(req.ServiceLocation)
	if location == domain.LocationOnsite && req.Address == "" {
		return nil, ErrInvalidLocation
	}

	lines, err := s.carts.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.BookingItem, 0, len(lines))
	for _, l := range lines {
		qty := l.Quantity
		if l.Kind == domain.KindService || qty < 1 {
			qty = 1
		}
		items = append(items, domain.BookingItem{
			Kind:      l.Kind,
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  qty,
		})
	}

	totals := cart.ComputeTotals(lines)

	b := &domain.Booking{
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		VehiclePlate:    req.VehiclePlate,
		VehicleModel:    req.VehicleModel,
		BookingType:     DeriveType(items),
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		ServiceLocation: location,
		Address:         req.Address,
		TotalPrice:      totals.Total,
		Status:          domain.BookingPending,
		PaymentStatus:   domain.PaymentPending,
		Items:           items,
		Notes:           req.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.schedule.Reserve(tx, req.ScheduledDate, req.ScheduledTime); err != nil {
			return err
		}
		if err := CreateTx(tx, b); err != nil {
			return err
		}
		return cart.ClearTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("user_id", userID),
		zap.String("slot", req.ScheduledDate+" "+req.ScheduledTime),
		zap.Float64("total", b.TotalPrice))

	return b, nil
}

// Cancel is the customer-facing cancellation. Only pending/confirmed
// and unpaid bookings may be cancelled; the slot unit is released
// atomically with respect to concurrent reserves on the same slot.
func (s *Service) Cancel(ctx context.Context, bookingID, userID int64, isAdmin bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := GetForUpdateTx(tx, bookingID)
		if err != nil {
			return err
		}
		if !isAdmin && b.UserID != userID {
			return ErrForbidden
		}
		if b.PaymentStatus == domain.PaymentPaid {
			return ErrNotCancellable
		}
		if !CanTransition(b.Status, domain.BookingCancelled) {
			return ErrNotCancellable
		}
		// Serialize against a racing reserve on the just-freed unit.
		if err := s.schedule.Lock(tx, b.ScheduledDate, b.ScheduledTime); err != nil {
			return err
		}
		return UpdateStatusTx(tx, b.ID, domain.BookingCancelled)
	})
}

// SetStatus enforces the adjacency graph for every manual transition.
func (s *Service) SetStatus(ctx context.Context, bookingID int64, newStatus domain.BookingStatus) (*domain.Booking, error) {
	if !ValidStatus(newStatus) {
		return nil, ErrIllegalTransition
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := GetForUpdateTx(tx, bookingID)
		if err != nil {
			return err
		}
		if !CanTransition(b.Status, newStatus) {
			return ErrIllegalTransition
		}
		if newStatus == domain.BookingCancelled {
			if b.PaymentStatus == domain.PaymentPaid {
				return ErrNotCancellable
			}
			if err := s.schedule.Lock(tx, b.ScheduledDate, b.ScheduledTime); err != nil {
				return err
			}
		}
		if newStatus == domain.BookingCompleted && b.TechnicianID != nil {
			if err := tx.Model(&domain.Technician{}).
				Where("id = ?", *b.TechnicianID).
				Update("total_jobs", gorm.Expr("total_jobs + 1")).Error; err != nil {
				return err
			}
		}
		return UpdateStatusTx(tx, b.ID, newStatus)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, bookingID)
}

// ConfirmOnPaymentTx promotes a pending booking after a settlement,
// inside the reconciliation transaction. Settlements for cancelled
// bookings are recorded by the caller but never promote the booking.
func ConfirmOnPaymentTx(tx *gorm.DB, b *domain.Booking) error {
	if err := UpdatePaymentStatusTx(tx, b.ID, domain.PaymentPaid); err != nil {
		return err
	}
	if b.Status == domain.BookingPending && CanTransition(b.Status, domain.BookingConfirmed) {
		return UpdateStatusTx(tx, b.ID, domain.BookingConfirmed)
	}
	return nil
}

// ConfirmOnAssignTx promotes a pending booking when staff assign a
// technician; any other state is left untouched.
func ConfirmOnAssignTx(tx *gorm.DB, b *domain.Booking) error {
	if b.Status == domain.BookingPending && CanTransition(b.Status, domain.BookingConfirmed) {
		return UpdateStatusTx(tx, b.ID, domain.BookingConfirmed)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetOwned(ctx context.Context, id, userID int64, isAdmin bool) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]domain.Booking, int64, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}
