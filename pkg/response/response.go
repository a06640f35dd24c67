// Package response defines the error shape the HTTP layer renders.
// Service and repository code returns these so handlers never pick
// status codes themselves.
package response

import (
	"errors"
)

// Error pairs an HTTP status code with the message the client sees.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Is matches by status code and message so the sentinels in the voice
// package survive fmt.Errorf wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}
