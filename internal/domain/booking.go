package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingDenied    BookingStatus = "denied"
	BookingCancelled BookingStatus = "cancelled"
)

// CancellationWindow is how long after creation a booking may be cancelled by its owner.
const CancellationWindow = 24 * time.Hour

// BookingStatuses lists every status in lifecycle order.
var BookingStatuses = []BookingStatus{
	BookingPending,
	BookingApproved,
	BookingDenied,
	BookingCancelled,
}

// ParseBookingStatus accepts only the four lowercase wire tokens.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingPending, BookingApproved, BookingDenied, BookingCancelled:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", s)
	}
}

func (s *BookingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseBookingStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingDenied || s == BookingCancelled
}

// pending is the only state the server moves on its own; approved can only
// be cancelled; denied and cancelled have no way out.
var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingPending:   {BookingApproved: true, BookingDenied: true, BookingCancelled: true},
	BookingApproved:  {BookingCancelled: true},
	BookingDenied:    {},
	BookingCancelled: {},
}

func CanTransition(from, to BookingStatus) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

type Booking struct {
	ID          string        `json:"id"`
	DateTime    time.Time     `json:"dateTime"`
	PartySize   int           `json:"partySize"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	CancelledAt *time.Time    `json:"cancelledAt"`
}

// Age is the time elapsed between creation and now.
func (b *Booking) Age(now time.Time) time.Duration {
	return now.Sub(b.CreatedAt)
}
