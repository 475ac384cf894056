package console

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"

	"tablebook/internal/domain"
	"tablebook/internal/modules/booking"
)

func (c *Console) statusColor(s domain.BookingStatus) termenv.Color {
	switch s {
	case domain.BookingApproved:
		return c.out.Color("2")
	case domain.BookingDenied:
		return c.out.Color("1")
	case domain.BookingPending:
		return c.out.Color("3")
	default:
		return c.out.Color("8")
	}
}

// RenderBookings prints bookings as a table, in the order given, with a
// note saying whether each one can still be cancelled at now. It waits for
// an open prompt to be answered.
func (c *Console) RenderBookings(bookings []domain.Booking, now time.Time) {
	c.prompt.Lock()
	defer c.prompt.Unlock()

	if len(bookings) == 0 {
		fmt.Fprintln(c.out, "No bookings yet.")
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tGUESTS\tSTATUS\tNOTE")

	for _, b := range bookings {
		date, clock := booking.FormatDateTime(b.DateTime, c.loc)
		label := c.out.String(booking.DisplayStatus(b.Status)).Foreground(c.statusColor(b.Status))
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", b.ID, date, clock, b.PartySize, label, c.note(b, now))
	}
	w.Flush()
}

func (c *Console) note(b domain.Booking, now time.Time) string {
	if b.Status == domain.BookingCancelled && b.CancelledAt != nil {
		date, clock := booking.FormatDateTime(*b.CancelledAt, c.loc)
		return fmt.Sprintf("cancelled %s %s", date, clock)
	}
	if booking.IsCancellable(b, now) {
		date, clock := booking.FormatDateTime(b.CreatedAt.Add(domain.CancellationWindow), c.loc)
		return fmt.Sprintf("can cancel until %s %s", date, clock)
	}
	return booking.CancellationRefusalReason(b, now)
}

// RenderBooking prints a one-line summary of a single booking.
func (c *Console) RenderBooking(b domain.Booking) {
	c.prompt.Lock()
	defer c.prompt.Unlock()

	date, clock := booking.FormatDateTime(b.DateTime, c.loc)
	fmt.Fprintf(c.out, "%s  %s • %s  %d guests  %s\n", b.ID, date, clock, b.PartySize, booking.DisplayStatus(b.Status))
}
