package workflow

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind. Every error that crosses the
// engine boundary carries exactly one code.
type Code string

const (
	CodeConfigurationMissing   Code = "CONFIGURATION_MISSING"
	CodeNoDocumentType         Code = "NO_DOCUMENT_TYPE"
	CodeInvalidStatus          Code = "INVALID_STATUS"
	CodeStatusNotConfigured    Code = "STATUS_NOT_CONFIGURED"
	CodeFromFinalStatus        Code = "FROM_FINAL_STATUS"
	CodeToInitialStatus        Code = "TO_INITIAL_STATUS"
	CodeApprovalDenied         Code = "APPROVAL_DENIED"
	CodePermissionDenied       Code = "PERMISSION_DENIED"
	CodeBusinessRuleViolation  Code = "BUSINESS_RULE_VIOLATION"
	CodeRuleOverlap            Code = "RULE_OVERLAP"
	CodePersistenceFailure     Code = "PERSISTENCE_FAILURE"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	CodeNotFound               Code = "NOT_FOUND"
)

// Error is a coded workflow error with a human-readable message.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a coded error with a formatted message.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the workflow code from an error chain. Errors without
// a code are reported as PERSISTENCE_FAILURE, the catch-all for faults
// below the engine.
func CodeOf(err error) Code {
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return CodePersistenceFailure
}

// IsCode reports whether err carries the given workflow code.
func IsCode(err error, code Code) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}
