package ari

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// generic request errors
	ErrCodeBadRequest       = 40000
	ErrCodeMissingParameter = 40001
	ErrCodeMissingField     = 40002

	// configuration errors, raised at the call that discovers them
	ErrCodeNoSuchOperation = 40400
	ErrCodeNoEvents        = 40500
	ErrCodeSchemaMismatch  = 40600

	// transport and internal failures
	ErrCodeInternal = 50000
)

var errCodeText = map[int]string{
	ErrCodeBadRequest:       "bad request",
	ErrCodeMissingParameter: "missing required parameter",
	ErrCodeMissingField:     "missing record field",
	ErrCodeNoSuchOperation:  "no such operation",
	ErrCodeNoEvents:         "no events available for this kind",
	ErrCodeSchemaMismatch:   "event schema mismatch",
	ErrCodeInternal:         "internal error",
}

// Error describes an error returned by the client or the ARI server. It
// always has a non-zero code; StatusCode is set when the error originated
// from an HTTP response.
type Error struct {
	Code       int   // client error code
	StatusCode int   // HTTP status code, if any
	Err        error // underlying error responsible for the failure; may be nil
}

// Error implements the builtin error interface.
func (err *Error) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return errCodeText[err.Code]
}

func (err *Error) Unwrap() error {
	return err.Err
}

func newError(code int, err error) *Error {
	switch err := err.(type) {
	case *Error:
		return err
	}
	return &Error{Code: code, Err: err}
}

func newErrorf(code int, format string, v ...interface{}) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, v...)}
}

// ErrorCode returns the client error code carried by err, or 0 when err is
// not an *Error.
func ErrorCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// httpError maps a non-success response to an *Error, carrying the response
// body as the message when the server supplied one.
func httpError(resp *http.Response) *Error {
	data, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = resp.Status
	}
	return &Error{
		Code:       resp.StatusCode * 100,
		StatusCode: resp.StatusCode,
		Err:        errors.New(msg),
	}
}
