package event

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a non-2xx response from the calendar API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("calendar api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("calendar api: status %d: %s", e.StatusCode, e.Detail)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsTransient reports whether err is a network-level failure (timeout,
// connection refused, DNS) rather than a definite response from the API.
// A transient failure on a write means the write may still have landed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
