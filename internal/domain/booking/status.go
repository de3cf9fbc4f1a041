package booking

import "workshop/internal/domain"

// transitions is the single adjacency map every status writer goes
// through: customer cancellation, payment promotion, technician
// auto-confirm and the admin override all converge here.
var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:    {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed:  {domain.BookingInProgress, domain.BookingCancelled},
	domain.BookingInProgress: {domain.BookingCompleted},
}

// CanTransition reports whether from → to is a legal edge. Terminal
// states (completed, cancelled) have no outgoing edges.
func CanTransition(from, to domain.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s domain.BookingStatus) bool {
	switch s {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingInProgress,
		domain.BookingCompleted, domain.BookingCancelled:
		return true
	}
	return false
}

// DeriveType computes the booking type once from which line lists are
// non-empty.
func DeriveType(items []domain.BookingItem) domain.BookingType {
	var hasPart, hasService bool
	for _, it := range items {
		switch it.Kind {
		case domain.KindSparepart:
			hasPart = true
		case domain.KindService:
			hasService = true
		}
	}
	switch {
	case hasPart && hasService:
		return domain.BookingSparepartAndService
	case hasService:
		return domain.BookingServiceOnly
	default:
		return domain.BookingSparepartOnly
	}
}
