package api

import (
	"errors"
	"fmt"
)

// ErrRejected is returned when the server answers with result "fail".
var ErrRejected = errors.New("request rejected by server")

// AuthError is returned for 401 and 403 responses. The session has
// expired or was never valid; the caller should log in again.
type AuthError struct {
	Method string
	Path   string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%d) on %s %s: log in again", e.Status, e.Method, e.Path)
}

// IsAuthError reports whether err is or wraps an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// StatusError is any other non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d on %s %s", e.Status, e.Method, e.Path)
	}
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.Status, e.Method, e.Path, e.Message)
}
