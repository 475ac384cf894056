package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablebook/internal/apiclient"
	"tablebook/internal/config"
	"tablebook/internal/console"
	"tablebook/internal/domain"
	"tablebook/internal/mockapi"
	jwtsvc "tablebook/internal/pkg/jwt"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type E2ETestSuite struct {
	app    *app
	server *mockapi.Server
	out    *syncBuffer
	cancel context.CancelFunc
}

// setupTestSuite runs the CLI against an in-memory reservation server, with
// input answering every prompt in order.
func setupTestSuite(t *testing.T, input string) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := mockapi.New(jwtsvc.New("test_secret_key_32_characters_min", time.Hour))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}

	a := &app{
		ctx: ctx,
		cfg: &config.ClientRuntimeConfig{
			AppEnv:         "test",
			APIBaseURL:     ts.URL + "/api",
			PollInterval:   20 * time.Millisecond,
			FetchTimeout:   time.Second,
			HTTPTimeout:    5 * time.Second,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			SessionDSN:     fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name()),
			SessionProfile: "default",
		},
		log:     zap.NewNop(),
		console: console.New(strings.NewReader(input), out, console.WithLocation(time.UTC)),
	}
	t.Cleanup(func() {
		cancel()
		a.close()
	})

	return &E2ETestSuite{app: a, server: srv, out: out, cancel: cancel}
}

func (s *E2ETestSuite) run(args ...string) error {
	return rootCommand(s.app).Execute(args, &bytes.Buffer{})
}

func TestE2E_BookAndCancel(t *testing.T) {
	s := setupTestSuite(t, "correct-horse\ncorrect-horse\ny\n")

	require.NoError(t, s.run("register", "--email", "guest@example.com"))
	require.NoError(t, s.run("book", "--date", "2030-05-01", "--time", "19:30", "--party", "4"))
	require.NoError(t, s.run("bookings"))

	list := s.app.board.Bookings()
	require.Len(t, list, 1)
	id := list[0].ID
	assert.Equal(t, domain.BookingPending, list[0].Status)
	assert.Contains(t, s.out.String(), "2030-05-01")
	assert.Contains(t, s.out.String(), "Pending")

	require.NoError(t, s.run("cancel", id))

	b, ok := s.app.board.Get(id)
	require.True(t, ok)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	assert.Contains(t, s.out.String(), "Cancelled.")
}

func TestE2E_CancelRefusedForDeniedBooking(t *testing.T) {
	s := setupTestSuite(t, "correct-horse\ncorrect-horse\n")

	require.NoError(t, s.run("register", "--email", "guest@example.com"))
	require.NoError(t, s.run("book", "--date", "2030-05-01", "--time", "19:30"))

	id := s.app.board.Bookings()[0].ID
	_, err := s.server.SetBookingStatus(id, domain.BookingDenied)
	require.NoError(t, err)

	err = s.run("cancel", id)
	require.Error(t, err)
	assert.Equal(t, "This booking cannot be cancelled in its current state.", describe(err))
	assert.Zero(t, s.server.Hits("POST", "/api/bookings/:id/cancel"))
}

func TestE2E_BookValidationNeverReachesServer(t *testing.T) {
	s := setupTestSuite(t, "correct-horse\ncorrect-horse\n")

	require.NoError(t, s.run("register", "--email", "guest@example.com"))

	err := s.run("book", "--date", "01/05/2030", "--time", "19:30")
	assert.Equal(t, "date: use the format YYYY-MM-DD", describe(err))
	assert.Zero(t, s.server.Hits("POST", "/api/bookings"))
}

func TestE2E_LoggedOutCommandsRefuse(t *testing.T) {
	s := setupTestSuite(t, "")

	err := s.run("bookings")
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)

	err = s.run("watch")
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)

	assert.Zero(t, s.server.Hits("GET", "/api/bookings"))
	assert.Zero(t, s.server.Hits("GET", "/api/notifications"))
}

func TestE2E_LoginLogout(t *testing.T) {
	s := setupTestSuite(t, "correct-horse\ncorrect-horse\ncorrect-horse\n")

	require.NoError(t, s.run("register", "--email", "guest@example.com"))
	require.NoError(t, s.run("logout"))

	token, err := s.app.auth.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.run("login", "--email", "Guest@Example.com"))
	token, err = s.app.auth.Token(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestE2E_WatchPresentsAndAcknowledges(t *testing.T) {
	s := setupTestSuite(t, "correct-horse\ncorrect-horse\n\n")

	require.NoError(t, s.run("register", "--email", "guest@example.com"))
	require.NoError(t, s.run("book", "--date", "2030-05-01", "--time", "19:30"))

	id := s.app.board.Bookings()[0].ID
	_, err := s.server.SetBookingStatus(id, domain.BookingApproved)
	require.NoError(t, err)

	listed := s.server.Hits("GET", "/api/bookings")

	done := make(chan error, 1)
	go func() { done <- s.run("watch") }()

	token, err := s.app.auth.Token(context.Background())
	require.NoError(t, err)
	client := apiclient.New(s.app.cfg.APIBaseURL)

	require.Eventually(t, func() bool {
		list, err := client.ListNotifications(context.Background(), token)
		return err == nil && len(list) == 1 && list[0].IsRead()
	}, 2*time.Second, 10*time.Millisecond)

	// initial listing plus the refresh that follows the acknowledgment
	require.Eventually(t, func() bool {
		return s.server.Hits("GET", "/api/bookings") >= listed+2
	}, 2*time.Second, 10*time.Millisecond)

	b, ok := s.app.board.Get(id)
	require.True(t, ok)
	assert.Equal(t, domain.BookingApproved, b.Status)

	s.cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}

	assert.Equal(t, 1, strings.Count(s.out.String(), "Booking approved"))
}
