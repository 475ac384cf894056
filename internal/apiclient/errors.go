package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated  = errors.New("not logged in")
	ErrEmptyResponse     = errors.New("empty response from server")
	ErrMalformedResponse = errors.New("malformed response from server")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) String() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
