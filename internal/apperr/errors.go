// Package apperr defines the error values reported by the admin API.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_FAILED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeDuplicate    Code = "DUPLICATE_KEY"
	CodeDelivery     Code = "DELIVERY_FAILED"
	CodeRender       Code = "RENDER_FAILED"
	CodeStore        Code = "STORE_FAILED"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeConflict     Code = "CONFLICT"
)

// Error is a classified failure. Message is safe to show to an admin;
// Details and Err are for logs.
type Error struct {
	Code    Code
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func NotFound(resource, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: fmt.Sprintf("id: %s", id),
	}
}

func Duplicate(message string, err error) *Error {
	return &Error{Code: CodeDuplicate, Message: message, Err: err}
}

func Delivery(channel string, err error) *Error {
	return &Error{
		Code:    CodeDelivery,
		Message: fmt.Sprintf("%s delivery failed", channel),
		Err:     err,
	}
}

func Render(document string, err error) *Error {
	return &Error{
		Code:    CodeRender,
		Message: fmt.Sprintf("could not render %s", document),
		Err:     err,
	}
}

func Store(op string, err error) *Error {
	return &Error{
		Code:    CodeStore,
		Message: "database error",
		Details: op,
		Err:     err,
	}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeStore
// for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStore
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// MessageOf returns the admin-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
