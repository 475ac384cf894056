package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tablebook/internal/domain"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Server) createAccount(email, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if _, exists := s.accounts[email]; exists {
		return nil, ErrEmailAlreadyExists
	}
	a := &account{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	s.accounts[email] = a
	return a, nil
}

func (s *Server) checkCredentials(email, password string) (*account, error) {
	s.mu.Lock()
	a, ok := s.accounts[normalizeEmail(email)]
	s.mu.Unlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Server) bookingsFor(userID string) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Booking, 0)
	for _, r := range s.bookings {
		if r.OwnerID == userID {
			out = append(out, r.Booking)
		}
	}
	return out
}

func (s *Server) createBooking(userID string, dateTime time.Time, partySize int) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &bookingRecord{
		OwnerID: userID,
		Booking: domain.Booking{
			ID:        uuid.NewString(),
			DateTime:  dateTime.UTC(),
			PartySize: partySize,
			Status:    domain.BookingPending,
			CreatedAt: s.now().UTC(),
		},
	}
	s.bookings = append(s.bookings, r)
	return r.Booking
}

// findBooking must be called with s.mu held.
func (s *Server) findBooking(id string) *bookingRecord {
	for _, r := range s.bookings {
		if r.Booking.ID == id {
			return r
		}
	}
	return nil
}

// cancelBooking applies the same rules the client checks before asking.
func (s *Server) cancelBooking(userID, id string) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findBooking(id)
	if r == nil || r.OwnerID != userID {
		return domain.Booking{}, ErrBookingNotFound
	}
	if !domain.CanTransition(r.Booking.Status, domain.BookingCancelled) {
		return domain.Booking{}, ErrInvalidStatusTransition
	}
	now := s.now().UTC()
	if r.Booking.Age(now) >= domain.CancellationWindow {
		return domain.Booking{}, ErrCancellationWindow
	}

	r.Booking.Status = domain.BookingCancelled
	r.Booking.CancelledAt = &now
	return r.Booking, nil
}

// SetBookingStatus is the restaurant's side of the lifecycle: it approves
// or denies a pending booking and notifies the guest.
func (s *Server) SetBookingStatus(id string, status domain.BookingStatus) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findBooking(id)
	if r == nil {
		return domain.Booking{}, ErrBookingNotFound
	}
	if status == domain.BookingCancelled || !domain.CanTransition(r.Booking.Status, status) {
		return domain.Booking{}, ErrInvalidStatusTransition
	}
	r.Booking.Status = status

	when := r.Booking.DateTime.Format("2006-01-02 15:04")
	switch status {
	case domain.BookingApproved:
		s.addNotification(r.OwnerID, "Booking approved", fmt.Sprintf("Your table for %d on %s is confirmed.", r.Booking.PartySize, when))
	case domain.BookingDenied:
		s.addNotification(r.OwnerID, "Booking denied", fmt.Sprintf("We could not accept your booking for %s.", when))
	}
	return r.Booking, nil
}

// Notify queues a notification for the account with the given email.
func (s *Server) Notify(email, title, message string) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return domain.Notification{}, ErrUnknownAccount
	}
	return s.addNotification(a.ID, title, message), nil
}

// addNotification must be called with s.mu held.
func (s *Server) addNotification(userID, title, message string) domain.Notification {
	r := &notificationRecord{
		OwnerID: userID,
		Notification: domain.Notification{
			ID:        uuid.NewString(),
			Title:     title,
			Message:   message,
			CreatedAt: s.now().UTC(),
		},
	}
	s.notifications = append(s.notifications, r)
	return r.Notification
}

// notificationsFor returns the user's notifications oldest first.
func (s *Server) notificationsFor(userID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, 0)
	for _, r := range s.notifications {
		if r.OwnerID == userID {
			out = append(out, r.Notification)
		}
	}
	return out
}

func (s *Server) markRead(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.notifications {
		if r.Notification.ID != id || r.OwnerID != userID {
			continue
		}
		if r.Notification.ReadAt == nil {
			now := s.now().UTC()
			r.Notification.ReadAt = &now
		}
		return nil
	}
	return ErrNotificationNotFound
}

// SeedDemo creates an account holding one pending booking and a welcome
// notification, so a fresh server has something to show.
func (s *Server) SeedDemo(email, password string) (domain.Booking, error) {
	a, err := s.createAccount(email, password)
	if err != nil {
		return domain.Booking{}, err
	}

	at := s.now().Add(48 * time.Hour).Truncate(time.Hour)
	b := s.createBooking(a.ID, at, 2)

	if _, err := s.Notify(email, "Welcome", "Your demo booking is waiting for the restaurant."); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}
