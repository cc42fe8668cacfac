package engine

import (
	"fmt"
	"net/http"
)

// Error is a tagged domain error. Handlers surface Status and Code directly
// instead of pattern-matching on message strings.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func configError(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "config_error", Message: message}
}

func authError(message string, err error) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "auth_error", Message: message, Err: err}
}

func mismatchError(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "identity_mismatch", Message: message}
}

func notFoundError(status int, message string) *Error {
	return &Error{Status: status, Code: "not_found", Message: message}
}

func storeError(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "store_error", Message: message, Err: err}
}

func validationError(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: message}
}
