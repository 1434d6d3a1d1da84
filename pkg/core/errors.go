package core

import (
	"fmt"
	"time"
)

// FlowError represents a structured error with category and details
type FlowError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: verification_failed, wait_timeout, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// Is matches FlowErrors by code, so errors.Is works against the
// predefined values even after WithDetails/WithCause copies.
func (e *FlowError) Is(target error) bool {
	t, ok := target.(*FlowError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *FlowError) WithCause(cause error) *FlowError {
	return &FlowError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *FlowError) WithMessage(msg string) *FlowError {
	return &FlowError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *FlowError) WithDetails(details map[string]interface{}) *FlowError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &FlowError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Verification errors
	ErrVerificationFailed = &FlowError{
		Category: ErrCategoryVerification,
		Code:     "verification_failed",
		Message:  "observed value does not match expected",
	}

	// Timeout errors
	ErrTimeout = &FlowError{
		Category: ErrCategoryTimeout,
		Code:     "timeout",
		Message:  "operation timed out",
	}
	ErrWaitTimeout = &FlowError{
		Category: ErrCategoryTimeout,
		Code:     "wait_timeout",
		Message:  "wait condition timed out",
	}

	// Session errors
	ErrSessionAcquire = &FlowError{
		Category: ErrCategorySession,
		Code:     "session_acquire",
		Message:  "could not start browser session",
	}
	ErrSessionClosed = &FlowError{
		Category: ErrCategorySession,
		Code:     "session_closed",
		Message:  "browser session already closed",
	}

	// Driver errors
	ErrElementNotFound = &FlowError{
		Category: ErrCategoryDriver,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrInteractionFailed = &FlowError{
		Category: ErrCategoryDriver,
		Code:     "interaction_failed",
		Message:  "element interaction failed",
	}
	ErrNavigationFailed = &FlowError{
		Category: ErrCategoryDriver,
		Code:     "navigation_failed",
		Message:  "page navigation failed",
	}

	// Config errors
	ErrInvalidConfig = &FlowError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &FlowError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}
)

// NewFlowError creates a new FlowError with the given parameters
func NewFlowError(category ErrorCategory, code, message string) *FlowError {
	return &FlowError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// NewVerificationFailed builds the canonical mismatch error carrying
// both the expected and the observed value.
func NewVerificationFailed(expected, observed interface{}) *FlowError {
	return ErrVerificationFailed.
		WithMessage(fmt.Sprintf("expected %v, observed %v", expected, observed)).
		WithDetails(map[string]interface{}{
			"expected": expected,
			"observed": observed,
		})
}

// NewWaitTimeout builds a wait timeout error naming the condition that
// never became true and how long it was polled.
func NewWaitTimeout(condition string, elapsed time.Duration) *FlowError {
	return ErrWaitTimeout.
		WithMessage(fmt.Sprintf("timed out waiting for %s after %s", condition, elapsed)).
		WithDetails(map[string]interface{}{
			"condition": condition,
			"elapsed":   elapsed,
		})
}
