package technician

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop/internal/domain"
	"workshop/internal/domain/booking"
	"workshop/internal/pkg/logger"
)

type Service struct {
	db       *gorm.DB
	repo     *Repository
	bookings *booking.Repository
	log      *zap.Logger
}

func NewService(db *gorm.DB, repo *Repository, bookings *booking.Repository) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		bookings: bookings,
		log:      logger.Get().Named("technician"),
	}
}

// Assign binds (or, with a nil id, clears) the technician on a booking.
// Availability is informational and not enforced: busy is derived from
// active bookings, not a single-slot claim. Assigning to a pending
// booking promotes it to confirmed through the lifecycle guard;
// unassigning never regresses status. Completed and cancelled bookings
// are closed to reassignment.
func (s *Service) Assign(ctx context.Context, bookingID int64, technicianID *int64) (*domain.Booking, error) {
	if technicianID != nil {
		if _, err := s.repo.GetByID(ctx, *technicianID); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := booking.GetForUpdateTx(tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status.IsTerminal() {
			return ErrBookingClosed
		}
		if err := booking.SetTechnicianTx(tx, b.ID, technicianID); err != nil {
			return err
		}
		if technicianID == nil {
			return nil
		}
		return booking.ConfirmOnAssignTx(tx, b)
	})
	if err != nil {
		return nil, err
	}

	if technicianID != nil {
		s.log.Info("technician assigned",
			zap.Int64("booking_id", bookingID),
			zap.Int64("technician_id", *technicianID))
	}

	return s.bookings.GetByID(ctx, bookingID)
}

func (s *Service) Create(ctx context.Context, t *domain.Technician) error {
	return s.repo.Create(ctx, t)
}

type TechnicianView struct {
	domain.Technician
	ActiveJobs int64 `json:"active_jobs"`
}

// List returns the crew with their derived workload.
func (s *Service) List(ctx context.Context) ([]TechnicianView, error) {
	techs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.ActiveJobs(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TechnicianView, 0, len(techs))
	for _, t := range techs {
		views = append(views, TechnicianView{Technician: t, ActiveJobs: active[t.ID]})
	}
	return views, nil
}

func (s *Service) SetAvailability(ctx context.Context, id int64, available bool) error {
	return s.repo.SetAvailability(ctx, id, available)
}
