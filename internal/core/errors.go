package core

import (
	"errors"
	"fmt"
)

// Literal detail strings the platform uses to signal token problems.
const (
	DetailCSRFExpired = "The CSRF token has expired."
	DetailJWTExpired  = "The JWT has expired"
)

var (
	// ErrTokenExpired means the anti-forgery token was rejected. The
	// guard recovers from this once per call by refreshing the token.
	ErrTokenExpired = errors.New("security token expired")
	// ErrSessionExpired means the login session itself is gone. Never
	// retried, forces a logout.
	ErrSessionExpired = errors.New("session expired")

	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable input")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyID          = errors.New("empty id")
	ErrCancelled        = errors.New("cancelled by user")
)

// APIError is a failure response from the platform, classified into
// the taxonomy above via Unwrap so call sites can use errors.Is.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.Detail {
	case DetailCSRFExpired:
		return ErrTokenExpired
	case DetailJWTExpired:
		return ErrSessionExpired
	}

	switch e.StatusCode {
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 422:
		return ErrUnprocessable
	}
	return nil
}
