package riot

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when the provider has no such account or match.
var ErrNotFound = errors.New("riot: not found")

// APIError is a failed provider call. A zero StatusCode means the request never got a response.
type APIError struct {
	Operation  string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("riot %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("riot %s: status %d", e.Operation, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying on a later cycle may succeed.
func (e *APIError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTransient classifies a gateway error. Unknown errors are treated as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return false
}
