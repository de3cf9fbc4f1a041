package schedule

import "errors"

var (
	ErrSlotUnavailable = errors.New("time slot is fully booked")
	ErrUnknownSlot     = errors.New("unrecognized slot date or time")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
)
