package config

import (
	"fmt"
	"strings"
	"time"

	"tablebook/internal/pkg/logger"
)

const (
	defaultMockAPIAddr  = ":8080"
	defaultJWTAccessTTL = "24h"
	defaultJWTSecret    = "change-me-jwt-secret"
)

// MockAPIRuntimeConfig configures the in-memory reservation server.
type MockAPIRuntimeConfig struct {
	AppEnv       string
	LogLevel     string
	Addr         string
	JWTSecret    string
	JWTAccessTTL time.Duration

	// OperatorToken guards the approve/deny/notify endpoints; empty disables them.
	OperatorToken string
	CORSOrigins   []string
}

func LoadMockAPIRuntimeConfig() (*MockAPIRuntimeConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("MOCKAPI_ADDR", defaultMockAPIAddr)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	v.SetDefault("MOCKAPI_OPERATOR_TOKEN", "")
	v.SetDefault("CORS_ORIGINS", "")

	cfg := &MockAPIRuntimeConfig{
		AppEnv:    strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		LogLevel:  strings.TrimSpace(v.GetString("LOG_LEVEL")),
		Addr:      strings.TrimSpace(v.GetString("MOCKAPI_ADDR")),
		JWTSecret: strings.TrimSpace(v.GetString("JWT_SECRET")),

		OperatorToken: strings.TrimSpace(v.GetString("MOCKAPI_OPERATOR_TOKEN")),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
	}

	cfg.JWTAccessTTL, err = parseDuration(v, "JWT_ACCESS_TTL")
	if err != nil {
		return nil, err
	}

	if err := validateMockAPIConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateMockAPIConfig(cfg *MockAPIRuntimeConfig) error {
	if cfg.Addr == "" {
		return fmt.Errorf("MOCKAPI_ADDR must not be empty")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if logger.IsProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
