package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared between the core services and the HTTP edge. Each code
// maps to a distinct caller-facing outcome.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeInvalidState     = "INVALID_STATE"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeConflict         = "CONFLICT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConsistency      = "CONSISTENCY_FAULT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeDuplicateID      = "DUPLICATE_ID"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewNotFound reports a referenced record id that is absent.
func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

// NewForbidden reports a caller that lacks rights over the record.
func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewInvalidState reports a state-machine guard violation. Callers that lose
// a race receive this and may retry at the application layer.
func NewInvalidState(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, details)
}

// NewInvalidRequest reports malformed input such as a self-swap.
func NewInvalidRequest(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidRequest, message, http.StatusBadRequest, details)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewConsistencyFault reports an invariant violation the protocol itself
// cannot have caused. Non-recoverable: logged, never retried.
func NewConsistencyFault(message string, details map[string]any) error {
	return NewDomainError(CodeConsistency, message, http.StatusInternalServerError, details)
}

// NewStoreUnavailable reports a persistence commit failure. The transaction
// was rolled back with no partial effect, so retrying the whole operation
// is safe.
func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "record store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewDuplicateID reports an id collision on insert. Ids are generated, so
// this indicates a fault rather than user error.
func NewDuplicateID(collection, id string) error {
	return NewDomainError(CodeDuplicateID, fmt.Sprintf("duplicate id in %s", collection),
		http.StatusInternalServerError, map[string]any{"id": id})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
