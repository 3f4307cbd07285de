package shop

import "errors"

// Typed failures returned by the shop engine. Every failed operation rolls
// back its whole unit of work, so callers always observe pre-call state.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNoActiveCart       = errors.New("no active cart")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrInvariantViolation = errors.New("shop invariant violated")
)
