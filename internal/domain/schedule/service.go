package schedule

import (
	"context"
	"time"

	"gorm.io/gorm"

	"workshop/internal/domain"
)

// Config carries the schedulable times of a working day and the default
// concurrent-booking capacity of each (date, time) unit.
type Config struct {
	Times           []string
	DefaultCapacity int
}

type Service struct {
	repo *Repository
	cfg  Config
}

func NewService(repo *Repository, cfg Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// SlotView is the availability projection for one configured time.
type SlotView struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	MaxBookings   int    `json:"max_bookings"`
	BookingsCount int64  `json:"bookings_count"`
	IsAvailable   bool   `json:"is_available"`
}

// ValidTime reports whether t is one of the configured slot times.
func (s *Service) ValidTime(t string) bool {
	for _, v := range s.cfg.Times {
		if v == t {
			return true
		}
	}
	return false
}

func (s *Service) DefaultCapacity() int { return s.cfg.DefaultCapacity }

// ListSlots returns every configured time for the date with its derived
// count and availability.
func (s *Service) ListSlots(ctx context.Context, date string) ([]SlotView, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrUnknownSlot
	}

	counts, err := s.repo.CountsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	caps, err := s.repo.CapacitiesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, 0, len(s.cfg.Times))
	for _, t := range s.cfg.Times {
		max := s.cfg.DefaultCapacity
		if m, ok := caps[t]; ok {
			max = m
		}
		cnt := counts[t]
		views = append(views, SlotView{
			Date:          date,
			Time:          t,
			MaxBookings:   max,
			BookingsCount: cnt,
			IsAvailable:   cnt < int64(max),
		})
	}
	return views, nil
}

// Reserve checks and claims one capacity unit inside the caller's
// transaction. The slot row lock makes the check-then-insert performed
// by the caller atomic per slot; the booking insert that follows in the
// same tx is what actually consumes the unit.
func (s *Service) Reserve(tx *gorm.DB, date, timeStr string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrUnknownSlot
	}
	if !s.ValidTime(timeStr) {
		return ErrUnknownSlot
	}

	slot, err := LockSlotForUpdate(tx, date, timeStr, s.cfg.DefaultCapacity)
	if err != nil {
		return err
	}

	count, err := CountActive(tx, date, timeStr)
	if err != nil {
		return err
	}
	if count >= int64(slot.MaxBookings) {
		return ErrSlotUnavailable
	}
	return nil
}

// Lock serializes a cancellation against concurrent reserves on the
// same slot; the release itself is the status flip done by the caller.
func (s *Service) Lock(tx *gorm.DB, date, timeStr string) error {
	_, err := LockSlotForUpdate(tx, date, timeStr, s.cfg.DefaultCapacity)
	return err
}

// SetCapacity is the admin capacity-correction entry point. Lowering
// max below the committed count is allowed: it stops new reservations
// without touching existing bookings.
func (s *Service) SetCapacity(ctx context.Context, date, timeStr string, max int) (*domain.TimeSlot, error) {
	if max < 1 {
		return nil, ErrInvalidCapacity
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrUnknownSlot
	}
	if !s.ValidTime(timeStr) {
		return nil, ErrUnknownSlot
	}
	return s.repo.UpsertCapacity(ctx, date, timeStr, max)
}
