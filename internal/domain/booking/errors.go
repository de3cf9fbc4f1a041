package booking

import "errors"

var (
	ErrEmptyCart         = errors.New("cart has no line items")
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("booking belongs to another customer")
	ErrIllegalTransition = errors.New("illegal booking status transition")
	ErrNotCancellable    = errors.New("booking is not cancellable")
	ErrInvalidLocation   = errors.New("onsite bookings require an address")
)
