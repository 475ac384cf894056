package mockapi

import (
	"time"

	"tablebook/internal/domain"
)

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateBookingRequest struct {
	DateTime  time.Time `json:"dateTime" binding:"required"`
	PartySize int       `json:"partySize" binding:"required,gt=0"`
}

type BookingResponse struct {
	Booking domain.Booking `json:"booking"`
}

type BookingListResponse struct {
	Bookings []domain.Booking `json:"bookings"`
}

type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type SetStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required"`
}

type NotifyRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message"`
}
