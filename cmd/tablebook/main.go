package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tablebook/internal/apiclient"
	"tablebook/internal/config"
	"tablebook/internal/console"
	"tablebook/internal/database"
	"tablebook/internal/modules/auth"
	"tablebook/internal/modules/booking"
	"tablebook/internal/pkg/logger"
	"tablebook/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadClientRuntimeConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a := &app{
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		console: console.Std(),
	}
	defer a.close()

	return rootCommand(a).Execute(args, os.Stderr)
}

// app wires the client together. The session store is opened on first use
// so help output never touches the database.
type app struct {
	ctx     context.Context
	cfg     *config.ClientRuntimeConfig
	log     *zap.Logger
	console *console.Console

	db       *gorm.DB
	sessions *repository.SessionRepository
	api      *apiclient.Client
	auth     *auth.Service
	board    *booking.Board
}

func (a *app) connect() error {
	if a.db != nil {
		return nil
	}

	db, err := database.Connect(a.cfg.SessionDSN, a.log)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate session store: %w", err)
	}

	a.db = db
	a.sessions = repository.NewSessionRepository(db, a.cfg.SessionProfile)
	if n, err := a.sessions.DeleteExpired(a.ctx); err != nil {
		a.log.Debug("pruning expired sessions failed", zap.Error(err))
	} else if n > 0 {
		a.log.Debug("pruned expired sessions", zap.Int64("count", n))
	}

	a.api = apiclient.New(a.cfg.APIBaseURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}),
		apiclient.WithRateLimit(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst),
		apiclient.WithLogger(a.log),
	)
	a.auth = auth.NewService(a.api, a.sessions, a.log)
	a.board = booking.NewBoard(a.api, a.auth,
		booking.WithLogger(a.log),
		booking.WithFetchTimeout(a.cfg.HTTPTimeout),
	)
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// describe turns known errors into the text the user should see.
func describe(err error) string {
	var (
		refusal    *booking.RefusalError
		bookingErr *booking.ValidationError
		authErr    *auth.ValidationError
		apiErr     *apiclient.APIError
	)
	switch {
	case errors.As(err, &refusal):
		return refusal.Reason
	case errors.As(err, &bookingErr):
		return bookingErr.Error()
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.Is(err, apiclient.ErrNotAuthenticated):
		return "not logged in; run 'tablebook login' first"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}
