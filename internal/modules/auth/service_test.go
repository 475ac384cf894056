package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCredentialsAPI struct {
	mock.Mock
}

func (m *mockCredentialsAPI) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockCredentialsAPI) Register(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Save(ctx context.Context, token, email string) error {
	args := m.Called(ctx, token, email)
	return args.Error(0)
}

func (m *mockSessionStore) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockSessionStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestService_Register_Success(t *testing.T) {
	api := new(mockCredentialsAPI)
	store := new(mockSessionStore)
	svc := NewService(api, store, nil)

	api.On("Register", mock.Anything, "guest@example.com", "correct-horse").Return("tok", nil)
	store.On("Save", mock.Anything, "tok", "guest@example.com").Return(nil)

	err := svc.Register(context.Background(), "  Guest@Example.com ", "correct-horse", "correct-horse")

	require.NoError(t, err)
	api.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		field    string
	}{
		{"missing email", "", "correct-horse", "correct-horse", "email"},
		{"bad email", "guest", "correct-horse", "correct-horse", "email"},
		{"short password", "guest@example.com", "short", "short", "password"},
		{"mismatch", "guest@example.com", "correct-horse", "correct-horsf", "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockCredentialsAPI)
			store := new(mockSessionStore)
			svc := NewService(api, store, nil)

			err := svc.Register(context.Background(), tt.email, tt.password, tt.confirm)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Login_ServerErrorIsReturned(t *testing.T) {
	api := new(mockCredentialsAPI)
	store := new(mockSessionStore)
	svc := NewService(api, store, nil)

	serverErr := errors.New("Wrong email or password")
	api.On("Login", mock.Anything, "guest@example.com", "nope-nope").Return("", serverErr)

	err := svc.Login(context.Background(), "guest@example.com", "nope-nope")

	assert.ErrorIs(t, err, serverErr)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Login_RequiresBothFields(t *testing.T) {
	svc := NewService(new(mockCredentialsAPI), new(mockSessionStore), nil)

	err := svc.Login(context.Background(), "guest@example.com", "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password: enter your password", verr.Error())
}

func TestService_Login_SavesToken(t *testing.T) {
	api := new(mockCredentialsAPI)
	store := new(mockSessionStore)
	svc := NewService(api, store, nil)

	api.On("Login", mock.Anything, "guest@example.com", "correct-horse").Return("tok", nil)
	store.On("Save", mock.Anything, "tok", "guest@example.com").Return(errors.New("disk full"))

	err := svc.Login(context.Background(), "guest@example.com", "correct-horse")

	assert.ErrorContains(t, err, "save session")
}

func TestService_LogoutAndToken(t *testing.T) {
	store := new(mockSessionStore)
	svc := NewService(new(mockCredentialsAPI), store, nil)

	store.On("Clear", mock.Anything).Return(nil)
	store.On("Token", mock.Anything).Return("", nil)

	require.NoError(t, svc.Logout(context.Background()))

	token, err := svc.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = svc.RequireToken(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
