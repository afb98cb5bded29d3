package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("record not found")
	ErrPrecondition      = errors.New("precondition failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrMissingDueDate    = errors.New("loan has no due date")
)

// DomainError carries a stable code alongside the underlying error so
// callers can map failures without string matching.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodePrecondition      = "PRECONDITION_FAILED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
	ErrCodeMissingDueDate    = "MISSING_DUE_DATE"
	ErrCodeStorageError      = "STORAGE_ERROR"
)

// Wrap common errors with domain context
func WrapValidation(reason string) *DomainError {
	return NewDomainError(ErrCodeValidation, reason, ErrValidation)
}

func WrapLoanNotFound(loanID string) *DomainError {
	return NewDomainError(
		ErrCodeNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrNotFound,
	)
}

func WrapPrecondition(reason string) *DomainError {
	return NewDomainError(ErrCodePrecondition, reason, ErrPrecondition)
}

func WrapInvalidTransition(op, step string) *DomainError {
	return NewDomainError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("%s is not allowed while the payment session is at %q", op, step),
		ErrInvalidTransition,
	)
}

func WrapPermissionDenied(reason string) *DomainError {
	return NewDomainError(ErrCodePermissionDenied, reason, ErrPermissionDenied)
}

func WrapMissingDueDate(loanID string) *DomainError {
	return NewDomainError(
		ErrCodeMissingDueDate,
		fmt.Sprintf("Loan with ID %s has no due date to remind about", loanID),
		ErrMissingDueDate,
	)
}

func WrapStorageError(err error) *DomainError {
	return NewDomainError(
		ErrCodeStorageError,
		"storage operation failed",
		err,
	)
}
