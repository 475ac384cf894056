package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tablebook/internal/apiclient"
	"tablebook/internal/domain"
	"tablebook/internal/pkg/logger"
)

// Board holds the user's booking list. Refreshes from any trigger share one
// request and replace the list whole.
type Board struct {
	api    BookingAPI
	tokens TokenSource
	loc    *time.Location
	log    *zap.Logger

	fetchTimeout time.Duration

	group singleflight.Group

	mu       sync.RWMutex
	bookings []domain.Booking
}

type BoardOption func(*Board)

func WithLocation(loc *time.Location) BoardOption {
	return func(b *Board) { b.loc = loc }
}

func WithLogger(l *zap.Logger) BoardOption {
	return func(b *Board) { b.log = l }
}

// WithFetchTimeout bounds each shared list request (default: 15s).
func WithFetchTimeout(d time.Duration) BoardOption {
	return func(b *Board) {
		if d > 0 {
			b.fetchTimeout = d
		}
	}
}

func NewBoard(api BookingAPI, tokens TokenSource, opts ...BoardOption) *Board {
	b := &Board{
		api:    api,
		tokens: tokens,
		loc:    time.Local,

		fetchTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = logger.OrNop(b.log)
	return b
}

func (b *Board) token(ctx context.Context) (string, error) {
	token, err := b.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", apiclient.ErrNotAuthenticated
	}
	return token, nil
}

// Refresh reloads the list from the server. Concurrent callers share one
// request, which runs on its own deadline so one caller giving up does not
// fail the others.
func (b *Board) Refresh(ctx context.Context) error {
	token, err := b.token(ctx)
	if err != nil {
		return err
	}

	ch := b.group.DoChan("bookings", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.fetchTimeout)
		defer cancel()

		list, err := b.api.ListBookings(fetchCtx, token)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.bookings = list
		b.mu.Unlock()
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			b.log.Debug("bookings refresh shared with concurrent caller")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Bookings returns a snapshot of the list, newest first.
func (b *Board) Bookings() []domain.Booking {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return SortByRecency(b.bookings)
}

func (b *Board) Get(id string) (domain.Booking, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, bk := range b.bookings {
		if bk.ID == id {
			return bk, true
		}
	}
	return domain.Booking{}, false
}

// Cancel checks the booking against the cancellation rules before asking
// the server. A local refusal is a *RefusalError.
func (b *Board) Cancel(ctx context.Context, id string, now time.Time) (*domain.Booking, error) {
	current, ok := b.Get(id)
	if !ok {
		return nil, ErrBookingNotFound
	}
	if !IsCancellable(current, now) {
		return nil, &RefusalError{BookingID: id, Reason: CancellationRefusalReason(current, now)}
	}

	token, err := b.token(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := b.api.CancelBooking(ctx, token, id)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	for i := range b.bookings {
		if b.bookings[i].ID == id {
			b.bookings[i] = *updated
			break
		}
	}
	b.mu.Unlock()

	return updated, nil
}

// Create validates and submits a new booking, then reloads the list.
func (b *Board) Create(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	at, size, err := in.Parse(b.loc)
	if err != nil {
		return nil, err
	}

	token, err := b.token(ctx)
	if err != nil {
		return nil, err
	}
	created, err := b.api.CreateBooking(ctx, token, at, size)
	if err != nil {
		return nil, err
	}

	if err := b.Refresh(ctx); err != nil {
		b.log.Debug("refresh after create failed", zap.String("booking_id", created.ID), zap.Error(err))
		b.mu.Lock()
		b.bookings = append(b.bookings, *created)
		b.mu.Unlock()
	}
	return created, nil
}
