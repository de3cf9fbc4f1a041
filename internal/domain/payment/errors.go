package payment

import "errors"

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrAlreadyPaid        = errors.New("booking is already paid")
	ErrNotPayable         = errors.New("booking is not payable in its current state")
	ErrUnknownOrder       = errors.New("unknown gateway order reference")
	ErrInvalidSignature   = errors.New("gateway signature mismatch")
	ErrAmountMismatch     = errors.New("gateway amount does not match booking total")
	ErrStaleCallback      = errors.New("stale gateway callback")
)
