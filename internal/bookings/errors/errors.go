package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrDuplicateBooking means a booking already exists for the bid.
	ErrDuplicateBooking = errors.New("bid already has a booking")
)
