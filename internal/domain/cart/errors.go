package cart

import "errors"

var (
	ErrDuplicateItem = errors.New("service already in cart")
	ErrItemNotFound  = errors.New("catalog item not found")
	ErrLineNotFound  = errors.New("cart line not found")
	ErrInvalidKind   = errors.New("unknown item kind")
)
