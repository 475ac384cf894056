package booking

import (
	"errors"
	"fmt"
)

var ErrBookingNotFound = errors.New("booking not found")

// ValidationError rejects creation input before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// RefusalError is returned when a cancellation is refused locally.
type RefusalError struct {
	BookingID string
	Reason    string
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("cancel booking %s: %s", e.BookingID, e.Reason)
}
