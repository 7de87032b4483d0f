package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "An error occurred"

var (
	// ErrUnauthorized is matched by APIErrors with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is matched by APIErrors with status 404.
	ErrNotFound = errors.New("not found")
)

// envelope is the wrapper every backend response uses.
type envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

// APIError is a non-2xx backend response. Message is the envelope's
// user-facing message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

func newAPIError(status int, body []byte) *APIError {
	var env envelope[json.RawMessage]
	message := DefaultErrorMessage
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		message = env.Message
	}
	return &APIError{StatusCode: status, Message: message}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
