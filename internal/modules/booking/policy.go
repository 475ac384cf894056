package booking

import (
	"fmt"
	"sort"
	"time"

	"tablebook/internal/domain"
)

const (
	ReasonTerminalStatus = "This booking cannot be cancelled in its current state."
	ReasonWindowExpired  = "Cancellation is only allowed within 24 hours of creation."
	ReasonNotCancellable = "Cancellation is only allowed while pending or approved."
)

// IsCancellable reports whether the owner may still cancel b at now.
// The window is exclusive: a booking exactly 24h old is not cancellable.
func IsCancellable(b domain.Booking, now time.Time) bool {
	switch b.Status {
	case domain.BookingPending, domain.BookingApproved:
		return b.Age(now) < domain.CancellationWindow
	default:
		return false
	}
}

// CancellationRefusalReason explains why IsCancellable returned false.
// Status wins over age, so a denied booking never reports the time window.
func CancellationRefusalReason(b domain.Booking, now time.Time) string {
	if b.Status.IsTerminal() {
		return ReasonTerminalStatus
	}
	if b.Age(now) >= domain.CancellationWindow {
		return ReasonWindowExpired
	}
	return ReasonNotCancellable
}

// DisplayStatus maps a status to its label. Every decoded status has one;
// anything else is a programming error.
func DisplayStatus(s domain.BookingStatus) string {
	switch s {
	case domain.BookingPending:
		return "Pending"
	case domain.BookingApproved:
		return "Approved"
	case domain.BookingDenied:
		return "Denied"
	case domain.BookingCancelled:
		return "Cancelled"
	}
	panic(fmt.Sprintf("booking: no label for status %q", string(s)))
}

// SortByRecency returns a copy of bookings, newest first. Bookings created
// at the same instant keep their input order.
func SortByRecency(bookings []domain.Booking) []domain.Booking {
	out := make([]domain.Booking, len(bookings))
	copy(out, bookings)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FormatDateTime renders t in loc as a date and an HH:mm clock time.
func FormatDateTime(t time.Time, loc *time.Location) (date, clock string) {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return lt.Format("2006-01-02"), lt.Format("15:04")
}
