package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput covers malformed quantities, oversize notes and missing fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOrderNotOpen is returned when mutating an order that is Paid or Cancelled.
	ErrOrderNotOpen = errors.New("order is not open")
	// ErrProductUnavailable is returned when adding a product marked unavailable.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInvalidReference indicates a dangling or protected foreign key.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidTransition is returned for status changes out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTokenCollision means a generated session token already exists.
	ErrTokenCollision = errors.New("session token collision")
)
