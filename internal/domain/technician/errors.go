package technician

import "errors"

var (
	ErrNotFound      = errors.New("technician not found")
	ErrBookingClosed = errors.New("booking is already completed or cancelled")
)
