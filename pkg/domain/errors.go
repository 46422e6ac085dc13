package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionActive is returned when an operation requires a terminal session
	ErrSessionActive = errors.New("session is still running")
	// ErrSessionTerminal is returned when an operation requires a running session
	ErrSessionTerminal = errors.New("session already in terminal state")
	// ErrResultNotReady is returned when the result is requested before completion
	ErrResultNotReady = errors.New("result not ready")
	// ErrInvalidRequest marks validation failures of workflow parameters
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownProvider is returned for provider names outside the catalog
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrDeliveryDegraded is surfaced when progress cannot be observed.
	// It never means the workflow itself failed.
	ErrDeliveryDegraded = errors.New("progress delivery degraded")
	// ErrTransport marks a streaming or polling transport failure
	ErrTransport = errors.New("transport failure")
	// ErrStalled is returned when a transport delivered nothing within the inactivity window
	ErrStalled = errors.New("transport stalled")
)

// FailureKind classifies a step failure
type FailureKind string

const (
	FailureProviderTimeout  FailureKind = "provider_timeout"
	FailureProviderRejected FailureKind = "provider_rejected"
	FailureProviderError    FailureKind = "provider_error"
	FailureCancelled        FailureKind = "cancelled"
)

// StepError is the typed failure of one step
type StepError struct {
	Kind     FailureKind
	Step     string
	Provider string
	Err      error
}

func (e *StepError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("step %s failed (%s, %s): %v", e.Step, e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("step %s failed (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// AsStepError extracts a StepError from err
func AsStepError(err error) (*StepError, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
