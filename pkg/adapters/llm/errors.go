package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aescanero/debatehub/pkg/domain"
)

// APIError represents a provider API error with HTTP status code
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable reports whether a failed call may succeed when repeated.
// Cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	// Network errors
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Classify maps a provider failure to its failure kind
func Classify(err error) domain.FailureKind {
	if errors.Is(err, context.Canceled) {
		return domain.FailureCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FailureProviderTimeout
	}
	if errors.Is(err, domain.ErrUnknownProvider) {
		return domain.FailureProviderRejected
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusNotFound, http.StatusUnprocessableEntity:
			return domain.FailureProviderRejected
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return domain.FailureProviderTimeout
		}
		return domain.FailureProviderError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FailureProviderTimeout
	}
	return domain.FailureProviderError
}
