package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeDerivation indicates no off-curve program address exists for a seed tuple
	ErrCodeDerivation ErrorCode = "DERIVATION"

	// ErrCodeLayout indicates data that does not fit the program's fixed byte layout
	ErrCodeLayout ErrorCode = "LAYOUT"

	// ErrCodeSubmission indicates the ledger rejected a transaction
	ErrCodeSubmission ErrorCode = "SUBMISSION"

	// ErrCodeInsufficientFunds indicates a payer could not cover the transaction
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"

	// ErrCodeValidation indicates input validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNetwork indicates network-related errors
	ErrCodeNetwork ErrorCode = "NETWORK"

	// ErrCodeDatabase indicates journal operation errors
	ErrCodeDatabase ErrorCode = "DATABASE"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeRPC indicates RPC-related errors
	ErrCodeRPC ErrorCode = "RPC"

	// ErrCodeTimeout indicates timeout errors
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeInternal indicates internal system errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// CandyError is an error raised while deriving, assembling or submitting
// candy machine transactions. Cause keeps the underlying error verbatim.
type CandyError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Operation string                 `json:"operation,omitempty"`
	Severity  Severity               `json:"severity"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// NewCandyError creates a new CandyError
func NewCandyError(code ErrorCode, operation, message string, cause error) *CandyError {
	return &CandyError{
		Code:      code,
		Message:   message,
		Operation: operation,
		Severity:  determineSeverity(code),
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *CandyError) Error() string {
	var head string
	if e.Operation != "" {
		head = fmt.Sprintf("[%s:%s] %s: %s", e.Operation, e.Code, e.Severity, e.Message)
	} else {
		head = fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message)
	}
	if e.Cause != nil {
		return head + ": " + e.Cause.Error()
	}
	return head
}

// Unwrap returns the underlying cause
func (e *CandyError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *CandyError) WithContext(key string, value interface{}) *CandyError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the default severity
func (e *CandyError) WithSeverity(severity Severity) *CandyError {
	e.Severity = severity
	return e
}

// IsRetryable returns true if the error is retryable.
// Submission, layout and derivation failures never are.
func (e *CandyError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeNetwork, ErrCodeRPC, ErrCodeTimeout:
		return true
	default:
		return false
	}
}

func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal, ErrCodeDerivation:
		return SeverityCritical
	case ErrCodeSubmission, ErrCodeInsufficientFunds, ErrCodeLayout, ErrCodeDatabase:
		return SeverityHigh
	case ErrCodeNetwork, ErrCodeRPC, ErrCodeTimeout:
		return SeverityMedium
	case ErrCodeValidation, ErrCodeConfig:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Common error constructors

// NewDerivationError creates a derivation exhaustion error
func NewDerivationError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeDerivation, operation, message, cause)
}

// NewLayoutError creates a layout mismatch error
func NewLayoutError(operation, message string) *CandyError {
	return NewCandyError(ErrCodeLayout, operation, message, nil)
}

// NewSubmissionError creates a submission rejection error
func NewSubmissionError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeSubmission, operation, message, cause)
}

// NewInsufficientFundsError creates a resource exhaustion error
func NewInsufficientFundsError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeInsufficientFunds, operation, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(operation, message string) *CandyError {
	return NewCandyError(ErrCodeValidation, operation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(operation, message string) *CandyError {
	return NewCandyError(ErrCodeConfig, operation, message, nil)
}

// NewRPCError creates an RPC error
func NewRPCError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeRPC, operation, message, cause)
}

// NewNetworkError creates a network error
func NewNetworkError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeNetwork, operation, message, cause)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation, message string) *CandyError {
	return NewCandyError(ErrCodeTimeout, operation, message, nil)
}

// NewDatabaseError creates a journal error
func NewDatabaseError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeDatabase, operation, message, cause)
}

// NewInternalError creates an internal error
func NewInternalError(operation, message string, cause error) *CandyError {
	return NewCandyError(ErrCodeInternal, operation, message, cause)
}
