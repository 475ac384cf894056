package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tablebook/internal/domain"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func bookingAt(status domain.BookingStatus, createdAt time.Time) domain.Booking {
	return domain.Booking{
		ID:        "b-1",
		DateTime:  createdAt.Add(72 * time.Hour),
		PartySize: 2,
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestIsCancellable(t *testing.T) {
	tests := []struct {
		name   string
		status domain.BookingStatus
		age    time.Duration
		want   bool
	}{
		{"pending fresh", domain.BookingPending, 0, true},
		{"approved fresh", domain.BookingApproved, time.Hour, true},
		{"pending 23h59m", domain.BookingPending, 23*time.Hour + 59*time.Minute, true},
		{"pending just under 24h", domain.BookingPending, domain.CancellationWindow - time.Nanosecond, true},
		{"pending exactly 24h", domain.BookingPending, domain.CancellationWindow, false},
		{"approved 24h01m", domain.BookingApproved, 24*time.Hour + time.Minute, false},
		{"denied fresh", domain.BookingDenied, time.Minute, false},
		{"cancelled fresh", domain.BookingCancelled, time.Minute, false},
		{"denied old", domain.BookingDenied, 30 * 24 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bookingAt(tt.status, t0)
			assert.Equal(t, tt.want, IsCancellable(b, t0.Add(tt.age)))
		})
	}
}

func TestIsCancellable_Repeatable(t *testing.T) {
	b := bookingAt(domain.BookingPending, t0)
	now := t0.Add(5 * time.Hour)

	first := IsCancellable(b, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsCancellable(b, now))
	}
}

func TestCancellationRefusalReason(t *testing.T) {
	tests := []struct {
		name   string
		status domain.BookingStatus
		age    time.Duration
		want   string
	}{
		{"denied one minute old", domain.BookingDenied, time.Minute, ReasonTerminalStatus},
		{"denied past window", domain.BookingDenied, 48 * time.Hour, ReasonTerminalStatus},
		{"cancelled past window", domain.BookingCancelled, 48 * time.Hour, ReasonTerminalStatus},
		{"pending exactly 24h", domain.BookingPending, 24 * time.Hour, ReasonWindowExpired},
		{"approved 24h01m", domain.BookingApproved, 24*time.Hour + time.Minute, ReasonWindowExpired},
		{"unknown status fresh", domain.BookingStatus("on_hold"), time.Minute, ReasonNotCancellable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bookingAt(tt.status, t0)
			now := t0.Add(tt.age)
			assert.False(t, IsCancellable(b, now))
			assert.Equal(t, tt.want, CancellationRefusalReason(b, now))
		})
	}
}

func TestDisplayStatus(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range domain.BookingStatuses {
		label := DisplayStatus(s)
		assert.NotEmpty(t, label)
		assert.False(t, seen[label], "duplicate label %q", label)
		seen[label] = true
	}

	assert.Panics(t, func() { DisplayStatus("PENDING") })
}

func TestSortByRecency(t *testing.T) {
	mk := func(id string, createdAt time.Time) domain.Booking {
		b := bookingAt(domain.BookingPending, createdAt)
		b.ID = id
		return b
	}

	t.Run("empty", func(t *testing.T) {
		out := SortByRecency(nil)
		assert.Empty(t, out)
	})

	t.Run("single", func(t *testing.T) {
		in := []domain.Booking{mk("a", t0)}
		assert.Equal(t, in, SortByRecency(in))
	})

	t.Run("newest first with stable ties", func(t *testing.T) {
		in := []domain.Booking{
			mk("old", t0),
			mk("tie-1", t0.Add(time.Hour)),
			mk("new", t0.Add(2*time.Hour)),
			mk("tie-2", t0.Add(time.Hour)),
			mk("tie-3", t0.Add(time.Hour)),
		}

		out := SortByRecency(in)

		ids := make([]string, len(out))
		for i, b := range out {
			ids[i] = b.ID
		}
		assert.Equal(t, []string{"new", "tie-1", "tie-2", "tie-3", "old"}, ids)

		for i := 1; i < len(out); i++ {
			assert.False(t, out[i].CreatedAt.After(out[i-1].CreatedAt))
		}
	})

	t.Run("does not touch input", func(t *testing.T) {
		in := []domain.Booking{mk("a", t0), mk("b", t0.Add(time.Hour))}
		_ = SortByRecency(in)
		assert.Equal(t, "a", in[0].ID)
		assert.Equal(t, "b", in[1].ID)
	})
}

func TestFormatDateTime(t *testing.T) {
	stockholm := time.FixedZone("CET", 3600)
	date, clock := FormatDateTime(time.Date(2026, 12, 31, 23, 30, 0, 0, time.UTC), stockholm)

	assert.Equal(t, "2027-01-01", date)
	assert.Equal(t, "00:30", clock)
}
