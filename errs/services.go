package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-party service errors
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrConfigMissing      = errors.New("configuration missing")
)

// NewServiceError wraps a failed call to an outbound provider (identity
// provider, object storage, email API).
func NewServiceError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
	}
}

// NewNotConfiguredError is returned by optional features whose settings are absent.
func NewNotConfiguredError(feature string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", feature),
	}
}

func IsServiceError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrConfigMissing)
}
