package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned after a 401 or 403: the stored session has
	// been cleared and the caller must not look at the response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoResponse wraps transport failures. The user has already been
	// notified; callers do nothing further.
	ErrNoResponse = errors.New("no response from server")
)

// APIError is a non-2xx answer carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Message extracts the text to show the user for err: the server message
// for an *APIError, err.Error() otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func statusMessage(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return fmt.Sprintf("HTTP %d", code)
}
