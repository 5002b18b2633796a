package swapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport covers network failures and unexpected HTTP statuses.
	ErrTransport = errors.New("transport error")
	// ErrNotFound means the catalog has no resource at the reference.
	ErrNotFound = errors.New("resource not found")
	// ErrMalformedData means a record could not be decoded or lacks a required field.
	ErrMalformedData = errors.New("malformed data")
)

// StatusError is returned for non-2xx responses. It unwraps to ErrNotFound for
// 404 and to ErrTransport otherwise.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone {
		return ErrNotFound
	}
	return ErrTransport
}

// IsRetryable reports whether a failed call may succeed when repeated.
// Only transport failures qualify; missing or malformed resources never change.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedData) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return errors.Is(err, ErrTransport)
}
