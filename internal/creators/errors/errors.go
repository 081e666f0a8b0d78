package errors

import "errors"

var (
	ErrNotFound = errors.New("creator not found")

	ErrInvalidID = errors.New("invalid creator ID format")

	ErrDateBooked = errors.New("date has a confirmed booking")
)
