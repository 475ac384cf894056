package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tablebook/internal/config"
	"tablebook/internal/mockapi"
	jwtsvc "tablebook/internal/pkg/jwt"
	"tablebook/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mockapi:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadMockAPIRuntimeConfig()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("mockapi", pflag.ContinueOnError)
	addr := flags.String("addr", cfg.Addr, "listen address")
	demoEmail := flags.String("demo-email", "", "create a demo account with this email")
	demoPassword := flags.String("demo-password", "demo-password", "password for the demo account")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if logger.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	srv := mockapi.New(j,
		mockapi.WithOperatorToken(cfg.OperatorToken),
		mockapi.WithLogger(log),
	)

	if *demoEmail != "" {
		b, err := srv.SeedDemo(*demoEmail, *demoPassword)
		if err != nil {
			return fmt.Errorf("seed demo account: %w", err)
		}
		log.Info("demo account ready", zap.String("email", *demoEmail), zap.String("booking_id", b.ID))
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(cfg.CORSOrigins...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("mock reservation API listening",
			zap.String("addr", *addr),
			zap.Bool("operator_endpoints", cfg.OperatorToken != ""),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
