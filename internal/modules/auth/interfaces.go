package auth

import "context"

// CredentialsAPI exchanges credentials for a bearer token.
type CredentialsAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (string, error)
}

// SessionStore keeps the token between runs.
type SessionStore interface {
	Save(ctx context.Context, token, email string) error
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
