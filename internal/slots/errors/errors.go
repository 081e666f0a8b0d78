package errors

import "errors"

var (
	ErrNotFound = errors.New("ad slot not found")

	ErrInvalidID = errors.New("invalid ad slot ID format")

	ErrSlotTaken = errors.New("ad slot is no longer available")
)
