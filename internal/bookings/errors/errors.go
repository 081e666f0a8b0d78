package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrSlotUnavailable = errors.New("ad slot is no longer available")

	ErrAlreadyCompleted = errors.New("booking is already completed")
)
