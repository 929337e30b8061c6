// Package errors defines the coded errors shared by the CLI and HTTP API.
//
// Every failure the pipeline reports carries a [Code]. The HTTP server turns
// the code into a status with [HTTPStatus]; the CLI turns it into a process
// exit status with [ExitCode]. Codes group by prefix:
//   - INVALID_*: the caller sent something unusable
//   - *NOT_FOUND: a file or stored layout is missing
//   - UNAVAILABLE, TIMEOUT, CANCELED: a backend or the caller gave up
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// Usage:
//
//	err := errors.Wrap(errors.ErrCodeInvalidWorkflow, cause, "job %d", i)
//	if errors.Is(err, errors.ErrCodeInvalidWorkflow) { ... }
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidWorkflow Code = "INVALID_WORKFLOW"
	ErrCodeInvalidOptions  Code = "INVALID_OPTIONS"
	ErrCodeInvalidLayout   Code = "INVALID_LAYOUT"
	ErrCodeInvalidHash     Code = "INVALID_HASH"

	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeLayoutNotFound Code = "LAYOUT_NOT_FOUND"

	ErrCodeUnavailable Code = "UNAVAILABLE"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeCanceled    Code = "CANCELED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// statusClientClosed is the de facto status for a request the client
// abandoned.
const statusClientClosed = 499

// Exit statuses follow sysexits(3).
const (
	exitFailure     = 1
	exitDataErr     = 65
	exitNoInput     = 66
	exitUnavailable = 69
	exitSoftware    = 70
	exitTempFail    = 75
	exitInterrupted = 130
)

var codeTable = map[Code]struct{ status, exit int }{
	ErrCodeInvalidInput:    {http.StatusBadRequest, exitDataErr},
	ErrCodeInvalidFormat:   {http.StatusBadRequest, exitDataErr},
	ErrCodeInvalidWorkflow: {http.StatusBadRequest, exitDataErr},
	ErrCodeInvalidOptions:  {http.StatusBadRequest, exitDataErr},
	ErrCodeInvalidLayout:   {http.StatusBadRequest, exitDataErr},
	ErrCodeInvalidHash:     {http.StatusBadRequest, exitDataErr},
	ErrCodeNotFound:        {http.StatusNotFound, exitNoInput},
	ErrCodeFileNotFound:    {http.StatusNotFound, exitNoInput},
	ErrCodeLayoutNotFound:  {http.StatusNotFound, exitNoInput},
	ErrCodeUnavailable:     {http.StatusServiceUnavailable, exitUnavailable},
	ErrCodeTimeout:         {http.StatusGatewayTimeout, exitTempFail},
	ErrCodeCanceled:        {statusClientClosed, exitInterrupted},
	ErrCodeInternal:        {http.StatusInternalServerError, exitSoftware},
	ErrCodeUnsupported:     {http.StatusNotImplemented, exitDataErr},
}

// HTTPStatus maps a code to the status the HTTP API answers with.
// Unknown and empty codes map to 500.
func HTTPStatus(code Code) int {
	if info, ok := codeTable[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// ExitCode maps a code to a process exit status. Uncoded errors exit 1.
func ExitCode(code Code) int {
	if info, ok := codeTable[code]; ok {
		return info.exit
	}
	return exitFailure
}

// =============================================================================
// Error
// =============================================================================

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Detail is the error text without the leading code.
func (e *Error) Detail() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of the outermost *Error in err's chain. Bare
// context errors map to TIMEOUT and CANCELED; anything else has no code.
func CodeOf(err error) Code {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeCanceled
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Detail returns err's text without the leading code.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail()
	}
	return err.Error()
}
