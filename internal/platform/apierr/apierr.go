package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeUnauthenticated    = "unauthenticated"
	CodeItemNotFound       = "item_not_found"
	CodePersistenceFailure = "persistence_failure"
	CodeValidationFailure  = "validation_failure"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthenticated(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, err)
}

func ItemNotFound(err error) *Error {
	return New(http.StatusNotFound, CodeItemNotFound, err)
}

func PersistenceFailure(err error) *Error {
	return New(http.StatusInternalServerError, CodePersistenceFailure, err)
}

func ValidationFailure(err error) *Error {
	return New(http.StatusBadRequest, CodeValidationFailure, err)
}

// From extracts an *Error from err's chain, defaulting to a persistence
// failure so repo errors never leak raw to the client.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return PersistenceFailure(err)
}
