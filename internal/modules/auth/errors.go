package auth

import "tablebook/internal/apiclient"

// ErrNotLoggedIn is the same sentinel the API client returns for a missing
// token, so callers check one error.
var ErrNotLoggedIn = apiclient.ErrNotAuthenticated

// ValidationError rejects credentials before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
