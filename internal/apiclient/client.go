// Package apiclient is a typed HTTP client for the reservation API.
//
// Every booking and notification call takes the bearer token explicitly and
// refuses to touch the network when it is empty. Only login and register
// are sent unauthenticated.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tablebook/internal/domain"
	"tablebook/internal/pkg/logger"
)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests. Callers wait for a slot rather
// than failing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrNop(c.log)
	return c
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type bookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
}

type bookingResponse struct {
	Booking *domain.Booking `json:"booking"`
}

type createBookingRequest struct {
	DateTime  time.Time `json:"dateTime"`
	PartySize int       `json:"partySize"`
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "login", "/auth/login", email, password)
}

func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "register", "/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, path, "", credentials{Email: email, Password: password}, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return out.Token, nil
}

func (c *Client) ListBookings(ctx context.Context, token string) ([]domain.Booking, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var out bookingsResponse
	if err := c.do(ctx, http.MethodGet, "/bookings", token, nil, &out); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out.Bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, token string, dateTime time.Time, partySize int) (*domain.Booking, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	req := createBookingRequest{DateTime: dateTime.UTC(), PartySize: partySize}
	var out bookingResponse
	if err := c.do(ctx, http.MethodPost, "/bookings", token, req, &out); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if out.Booking == nil {
		return nil, fmt.Errorf("create booking: %w", ErrEmptyResponse)
	}
	return out.Booking, nil
}

func (c *Client) CancelBooking(ctx context.Context, token, id string) (*domain.Booking, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var out bookingResponse
	path := "/bookings/" + url.PathEscape(id) + "/cancel"
	if err := c.do(ctx, http.MethodPost, path, token, nil, &out); err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", id, err)
	}
	if out.Booking == nil {
		return nil, fmt.Errorf("cancel booking %s: %w", id, ErrEmptyResponse)
	}
	return out.Booking, nil
}

func (c *Client) ListNotifications(ctx context.Context, token string) ([]domain.Notification, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var out notificationsResponse
	if err := c.do(ctx, http.MethodGet, "/notifications", token, nil, &out); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, token, id string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	path := "/notifications/" + url.PathEscape(id) + "/read"
	if err := c.do(ctx, http.MethodPost, path, token, nil, nil); err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return nil
}

// do sends one request. out is decoded only when the response declares a
// JSON body; any other successful response leaves out untouched.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil || !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, raw),
	}
}

// errorMessage prefers a JSON error message, then the raw body text, then
// the status code.
func errorMessage(status int, raw []byte) string {
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		var s string
		if json.Unmarshal(body.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		if body.Message != "" {
			return body.Message
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
