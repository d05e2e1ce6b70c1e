package user

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of failure categories the HTTP boundary maps to status codes.
type Kind string

const (
	KindNotFound       Kind = "NOT_FOUND"
	KindDuplicateEmail Kind = "DUPLICATE_EMAIL"
	KindValidation     Kind = "VALIDATION_ERROR"
	KindUnexpected     Kind = "UNEXPECTED"
)

// gateway sentinels
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindUnexpected {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFoundByID(id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("User not found with id: %d", id),
		Err:     ErrNotFound,
	}
}

func NotFoundByEmail(email string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: "User not found with email: " + email,
		Err:     ErrNotFound,
	}
}

func DuplicateEmail() *Error {
	return &Error{
		Kind:    KindDuplicateEmail,
		Message: "Email already in use",
		Err:     ErrEmailTaken,
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Unexpected(op string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: op, Err: err}
}

// KindOf classifies any error. Errors that carry no Kind are UNEXPECTED.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnexpected
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
