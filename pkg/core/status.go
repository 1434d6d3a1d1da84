package core

// StepStatus represents the execution status of a flow step
type StepStatus int

const (
	StatusPending StepStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Completed successfully
	StatusFailed                    // Verification failed (expected behavior didn't occur)
	StatusErrored                   // Unexpected error (session, driver, timeout)
	StatusSkipped                   // Previous step failed
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone         ErrorCategory = iota // No error
	ErrCategoryVerification                      // Observed page state did not match expected
	ErrCategoryTimeout                           // Wait condition or operation timed out
	ErrCategorySession                           // Browser session could not start or was lost
	ErrCategoryDriver                            // Element lookup or interaction failed at the driver
	ErrCategoryConfig                            // Invalid configuration, missing required field
	ErrCategoryLocator                           // Locator name not registered for the page
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryVerification:
		return "verification"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategorySession:
		return "session"
	case ErrCategoryDriver:
		return "driver"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryLocator:
		return "locator"
	default:
		return "unknown"
	}
}
