package mockapi

import "errors"

var (
	ErrEmailAlreadyExists      = errors.New("email already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrUnknownAccount          = errors.New("unknown account")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrCancellationWindow      = errors.New("cancellation window has passed")
)
