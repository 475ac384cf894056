// Package mockapi is an in-memory implementation of the reservation API
// contract. It backs the client's tests and the local development server in
// cmd/mockapi. State lives only in process memory.
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tablebook/internal/domain"
	"tablebook/internal/middleware"
	jwtsvc "tablebook/internal/pkg/jwt"
	"tablebook/internal/pkg/logger"
	"tablebook/internal/pkg/response"
)

type account struct {
	ID           string
	Email        string
	PasswordHash []byte
}

type bookingRecord struct {
	OwnerID string
	Booking domain.Booking
}

type notificationRecord struct {
	OwnerID      string
	Notification domain.Notification
}

type failure struct {
	status  int
	message string
	left    int
}

type Server struct {
	jwt           *jwtsvc.Service
	operatorToken string
	log           *zap.Logger

	mu            sync.Mutex
	now           func() time.Time
	accounts      map[string]*account // by email
	bookings      []*bookingRecord
	notifications []*notificationRecord
	failures      map[string]*failure // by "METHOD /full/path"
	hits          map[string]int
}

type Option func(*Server)

// WithOperatorToken enables the operator endpoints behind the given token.
func WithOperatorToken(token string) Option {
	return func(s *Server) { s.operatorToken = token }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(jwt *jwtsvc.Service, opts ...Option) *Server {
	s := &Server{
		jwt:      jwt,
		now:      time.Now,
		accounts: make(map[string]*account),
		failures: make(map[string]*failure),
		hits:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrNop(s.log)
	return s
}

// Router builds a gin engine serving the API under /api.
func (s *Server) Router(corsOrigins ...string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(s.log))
	r.Use(middleware.CORS(corsOrigins))
	r.Use(s.injectFailures())

	api := r.Group("/api")
	s.RegisterRoutes(api)
	return r
}

func (s *Server) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
	}

	protected := rg.Group("")
	protected.Use(middleware.JWTAuth(s.jwt))
	{
		protected.GET("/bookings", s.ListBookings)
		protected.POST("/bookings", s.CreateBooking)
		protected.POST("/bookings/:id/cancel", s.CancelBooking)
		protected.GET("/notifications", s.ListNotifications)
		protected.POST("/notifications/:id/read", s.MarkNotificationRead)
	}

	operator := rg.Group("/operator")
	operator.Use(middleware.OperatorTokenAuth(s.operatorToken, s.log))
	{
		operator.POST("/bookings/:id/status", s.SetBookingStatusHandler)
		operator.POST("/notifications", s.NotifyHandler)
	}
}

// FailRoute makes the next count requests to method+fullPath (gin route
// syntax, e.g. "/api/notifications/:id/read") answer with status.
func (s *Server) FailRoute(method, fullPath string, status int, message string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+fullPath] = &failure{status: status, message: message, left: count}
}

// Hits reports how many requests reached method+fullPath, failed or not.
func (s *Server) Hits(method, fullPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+fullPath]
}

func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.FullPath()

		s.mu.Lock()
		s.hits[key]++
		f, ok := s.failures[key]
		if ok && f.left > 0 {
			f.left--
		} else {
			ok = false
		}
		s.mu.Unlock()

		if ok {
			if f.message == "" {
				c.AbortWithStatus(f.status)
				return
			}
			response.Abort(c, f.status, "INJECTED_FAILURE", f.message)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString("user_id")
}

func notFound(c *gin.Context, what string) {
	response.Error(c, http.StatusNotFound, "NOT_FOUND", what+" not found")
}
