package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tablebook/internal/pkg/logger"
)

const (
	defaultAPIBaseURL     = "http://localhost:8080/api"
	defaultPollInterval   = "2s"
	defaultFetchTimeout   = "10s"
	defaultHTTPTimeout    = "15s"
	defaultRateLimitRPS   = 5.0
	defaultRateLimitBurst = 10
	defaultSessionDSN     = "tablebook.db"
	defaultSessionProfile = "default"

	// the terminal belongs to the user; background failures log below this
	defaultClientLogLevel = "warn"
)

type ClientRuntimeConfig struct {
	AppEnv         string
	LogLevel       string
	APIBaseURL     string
	PollInterval   time.Duration
	FetchTimeout   time.Duration
	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	SessionDSN     string
	SessionProfile string
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// newViper reads environment variables and an optional tablebook.yaml from
// the working directory or ./config.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("tablebook")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func LoadClientRuntimeConfig() (*ClientRuntimeConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", defaultClientLogLevel)
	v.SetDefault("API_BASE_URL", defaultAPIBaseURL)
	v.SetDefault("POLL_INTERVAL", defaultPollInterval)
	v.SetDefault("FETCH_TIMEOUT", defaultFetchTimeout)
	v.SetDefault("HTTP_TIMEOUT", defaultHTTPTimeout)
	v.SetDefault("RATE_LIMIT_RPS", defaultRateLimitRPS)
	v.SetDefault("RATE_LIMIT_BURST", defaultRateLimitBurst)
	v.SetDefault("SESSION_DSN", defaultSessionDSN)
	v.SetDefault("SESSION_PROFILE", defaultSessionProfile)

	cfg := &ClientRuntimeConfig{
		AppEnv:         strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		LogLevel:       strings.TrimSpace(v.GetString("LOG_LEVEL")),
		APIBaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("API_BASE_URL")), "/"),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		SessionDSN:     strings.TrimSpace(v.GetString("SESSION_DSN")),
		SessionProfile: strings.TrimSpace(v.GetString("SESSION_PROFILE")),
	}

	cfg.PollInterval, err = parseDuration(v, "POLL_INTERVAL")
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout, err = parseDuration(v, "FETCH_TIMEOUT")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout, err = parseDuration(v, "HTTP_TIMEOUT")
	if err != nil {
		return nil, err
	}

	if err := validateClientConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateClientConfig(cfg *ClientRuntimeConfig) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be > 0")
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if cfg.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be > 0")
	}
	if cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be > 0")
	}
	if cfg.SessionDSN == "" {
		return fmt.Errorf("SESSION_DSN must not be empty")
	}
	if cfg.SessionProfile == "" {
		return fmt.Errorf("SESSION_PROFILE must not be empty")
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", cfg.APIBaseURL)
	}
	if logger.IsProdLike(cfg.AppEnv) && u.Scheme != "https" {
		return fmt.Errorf("in prod/release API_BASE_URL must use https")
	}

	return nil
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(v *viper.Viper, name string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(name))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}
