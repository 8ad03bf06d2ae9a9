package order

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrInvalidPhone      = errors.New("phone must contain 10 to 15 digits")
)
