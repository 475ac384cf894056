package booking

import (
	"context"
	"time"

	"tablebook/internal/domain"
)

// BookingAPI is the part of the reservation API the board talks to.
type BookingAPI interface {
	ListBookings(ctx context.Context, token string) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, token string, dateTime time.Time, partySize int) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token, id string) (*domain.Booking, error)
}

// TokenSource returns the current bearer token, or "" when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
