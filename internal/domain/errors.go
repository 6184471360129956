package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyOrder indicates an order attempt that resolved to zero items.
	ErrEmptyOrder = errors.New("no items to order")
	// ErrInsufficientStock indicates a requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatusTransition indicates a status change not permitted from the current state.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrForbidden indicates the caller lacks the required role or does not own the resource.
	ErrForbidden = errors.New("forbidden")
)
