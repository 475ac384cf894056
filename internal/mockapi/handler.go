package mockapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tablebook/internal/pkg/response"
)

func (s *Server) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and a password of at least 8 characters are required")
		return
	}

	a, err := s.createAccount(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "An account with this email already exists")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account")
		return
	}

	s.issueToken(c, http.StatusCreated, a)
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	a, err := s.checkCredentials(req.Email, req.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Wrong email or password")
		return
	}

	s.issueToken(c, http.StatusOK, a)
}

func (s *Server) issueToken(c *gin.Context, status int, a *account) {
	token, err := s.jwt.GenerateToken(a.ID, a.Email)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}
	response.Success(c, status, TokenResponse{Token: token})
}

func (s *Server) ListBookings(c *gin.Context) {
	response.Success(c, http.StatusOK, BookingListResponse{Bookings: s.bookingsFor(currentUser(c))})
}

func (s *Server) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "dateTime and a positive partySize are required")
		return
	}

	b := s.createBooking(currentUser(c), req.DateTime, req.PartySize)
	response.Success(c, http.StatusCreated, BookingResponse{Booking: b})
}

func (s *Server) CancelBooking(c *gin.Context) {
	b, err := s.cancelBooking(currentUser(c), c.Param("id"))
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, BookingResponse{Booking: b})
	case errors.Is(err, ErrBookingNotFound):
		notFound(c, "Booking")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS", "This booking cannot be cancelled in its current state.")
	case errors.Is(err, ErrCancellationWindow):
		response.Error(c, http.StatusConflict, "CANCELLATION_WINDOW", "Cancellation is only allowed within 24 hours of creation.")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel booking")
	}
}

func (s *Server) ListNotifications(c *gin.Context) {
	response.Success(c, http.StatusOK, NotificationListResponse{Notifications: s.notificationsFor(currentUser(c))})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	if err := s.markRead(currentUser(c), c.Param("id")); err != nil {
		notFound(c, "Notification")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) SetBookingStatusHandler(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of pending, approved, denied, cancelled")
		return
	}

	b, err := s.SetBookingStatus(c.Param("id"), req.Status)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, BookingResponse{Booking: b})
	case errors.Is(err, ErrBookingNotFound):
		notFound(c, "Booking")
	default:
		response.Error(c, http.StatusConflict, "INVALID_STATUS", err.Error())
	}
}

func (s *Server) NotifyHandler(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and title are required")
		return
	}

	n, err := s.Notify(req.Email, req.Title, req.Message)
	if err != nil {
		notFound(c, "Account")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"notification": n})
}
