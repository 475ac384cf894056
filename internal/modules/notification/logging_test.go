package notification

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"tablebook/internal/config"
	"tablebook/internal/pkg/logger"
)

// captureStderr points os.Stderr at a pipe for the rest of the test and
// returns a func that closes it and reports what was written.
func captureStderr(t *testing.T) func() string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = orig })

	done := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()

	return func() string {
		os.Stderr = orig
		_ = w.Close()
		return <-done
	}
}

func TestLoop_DefaultConfigKeepsFailuresOffTheTerminal(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := config.LoadClientRuntimeConfig()
	require.NoError(t, err)

	stderr := captureStderr(t)

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))

	inbox := newInbox("a")
	inbox.fetchErr = errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")
	p := newPresenter()
	r := new(MockRefresher)
	r.On("Refresh", mock.Anything).Return(errors.New("offline"))

	loop := NewLoop(Deps{
		Tokens:    staticToken("tok"),
		Fetcher:   inbox,
		Acker:     inbox,
		Refresher: r,
		Presenter: p,
	}, Config{FetchTimeout: cfg.FetchTimeout}, log)

	ctx := context.Background()
	loop.Poll(ctx)
	loop.Wait()

	// fetch recovers, acknowledgment and refresh fail
	inbox.mu.Lock()
	inbox.fetchErr = nil
	inbox.ackErr = errors.New("HTTP 503")
	inbox.mu.Unlock()

	loop.Poll(ctx)
	p.expectShown(t, "title a")
	p.answers <- true
	loop.Wait()

	_ = log.Sync()
	assert.Empty(t, stderr())
	assert.Equal(t, []string{"a"}, inbox.ackedIDs())
}
