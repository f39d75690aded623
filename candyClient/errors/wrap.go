package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WrapCandyError wraps an error as a CandyError if it isn't already one.
// An existing CandyError is copied, never modified, so shared errors stay
// unchanged.
func WrapCandyError(err error, code ErrorCode, operation, message string) *CandyError {
	if err == nil {
		return nil
	}

	var candyErr *CandyError
	if errors.As(err, &candyErr) {
		wrapped := *candyErr
		wrapped.Context = make(map[string]interface{}, len(candyErr.Context)+1)
		for k, v := range candyErr.Context {
			wrapped.Context[k] = v
		}
		wrapped.Context["wrapped_message"] = message
		if operation != "" && wrapped.Operation == "" {
			wrapped.Operation = operation
		}
		return &wrapped
	}

	return NewCandyError(code, operation, message, err)
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsCandyError checks if an error is a CandyError with specific code
func IsCandyError(err error, code ErrorCode) bool {
	var candyErr *CandyError
	if errors.As(err, &candyErr) {
		return candyErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost CandyError in the chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var candyErr *CandyError
	if errors.As(err, &candyErr) {
		return candyErr.Code
	}
	return ""
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var candyErr *CandyError
	if errors.As(err, &candyErr) {
		return candyErr.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"too many requests",
		"rate limit",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var candyErr *CandyError
	if errors.As(err, &candyErr) {
		return candyErr.Severity
	}
	return SeverityLow
}
