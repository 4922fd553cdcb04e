package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailed indicates a declaration source could not be parsed at all
	ParseFailed ErrorCode = "PARSE_FAILED"
	// SurfaceInvalid indicates a module surface violates a structural invariant
	SurfaceInvalid ErrorCode = "SURFACE_INVALID"
	// PolicyInvalid indicates a policy file could not be loaded or compiled
	PolicyInvalid ErrorCode = "POLICY_INVALID"
	// RuleInvalid indicates a single rule has a malformed discriminant or body
	RuleInvalid ErrorCode = "RULE_INVALID"
	// BaselineMissing indicates no stored baseline exists for the requested label
	BaselineMissing ErrorCode = "BASELINE_MISSING"
	// StoreFailure indicates the baseline store could not read or write
	StoreFailure ErrorCode = "STORE_FAILURE"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// DeltaError represents an apidelta error with a stable code and optional hint
type DeltaError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new DeltaError
func New(code ErrorCode, message string, cause error) *DeltaError {
	return &DeltaError{
		Code:    code,
		Message: message,
		Hint:    hints[code],
		cause:   cause,
	}
}

// Error implements the error interface
func (e *DeltaError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DeltaError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *DeltaError) WithDetails(details interface{}) *DeltaError {
	e.Details = details
	return e
}

// hints maps error codes to a suggested next step shown alongside the message
var hints = map[ErrorCode]string{
	BaselineMissing: "record one with: apidelta baseline save <label>",
	PolicyInvalid:   "validate the file with: apidelta rules check <path>",
	StoreFailure:    "check the store path in the [store] config section",
	ConfigInvalid:   "run: apidelta config show",
}

// HintFor returns the suggested next step for an error code, if any
func HintFor(code ErrorCode) string {
	return hints[code]
}
