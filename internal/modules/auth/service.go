package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tablebook/internal/pkg/logger"
	"tablebook/internal/pkg/validator"
)

// Service logs the user in and out and hands out the stored token.
type Service struct {
	api      CredentialsAPI
	sessions SessionStore
	log      *zap.Logger
}

func NewService(api CredentialsAPI, sessions SessionStore, log *zap.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		log:      logger.OrNop(log),
	}
}

func (s *Service) Register(ctx context.Context, email, password, confirm string) error {
	in := RegisterInput{
		Email:           normalizeEmail(email),
		Password:        password,
		ConfirmPassword: confirm,
	}
	if err := firstInvalid(validator.Validate(in), registerMessages); err != nil {
		return err
	}

	token, err := s.api.Register(ctx, in.Email, in.Password)
	if err != nil {
		return err
	}
	return s.save(ctx, token, in.Email)
}

func (s *Service) Login(ctx context.Context, email, password string) error {
	in := LoginInput{Email: normalizeEmail(email), Password: password}
	if err := firstInvalid(validator.Validate(in), loginMessages); err != nil {
		return err
	}

	token, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		return err
	}
	return s.save(ctx, token, in.Email)
}

func (s *Service) save(ctx context.Context, token, email string) error {
	if err := s.sessions.Save(ctx, token, email); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.log.Debug("session saved", zap.String("email", email))
	return nil
}

// Logout forgets the stored token. Logging out twice is fine.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the stored token, or "" when logged out.
func (s *Service) Token(ctx context.Context) (string, error) {
	return s.sessions.Token(ctx)
}

// RequireToken is Token for commands that cannot run logged out.
func (s *Service) RequireToken(ctx context.Context) (string, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstInvalid(failed map[string]string, messages []fieldMessage) error {
	if len(failed) == 0 {
		return nil
	}
	for _, m := range messages {
		if _, ok := failed[m.field]; ok {
			return &ValidationError{Field: m.field, Message: m.message}
		}
	}
	return nil
}
