// Package winerror carries Win32 API failures as typed errors that keep the
// originating system error code. The message text comes from the code itself:
// syscall.Errno formats through FormatMessageW on Windows, so an *Error prints
// the same description the OS would report.
package winerror

import (
	stderrors "errors"
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// Error is a failed Win32 call. Op names the API that failed and Code is the
// system error code it reported.
type Error struct {
	Op   string
	Code syscall.Errno
}

// New builds an *Error from a known error code, e.g. a kind's invalid-handle
// code when no call was actually made.
func New(op string, code syscall.Errno) *Error {
	return &Error{Op: op, Code: code}
}

// From converts the error returned by a golang.org/x/sys/windows call into an
// *Error. Those calls report failures as syscall.Errno values; anything else
// is passed through wrapped with the operation name.
func From(op string, err error) error {
	if err == nil {
		return nil
	}
	var code syscall.Errno
	if stderrors.As(err, &code) {
		return &Error{Op: op, Code: code}
	}
	return errors.Wrap(err, op)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Op, e.Code.Error(), uintptr(e.Code))
}

// Unwrap exposes the Errno so callers can match against the windows.ERROR_*
// constants with errors.Is.
func (e *Error) Unwrap() error { return e.Code }

// Code extracts the system error code from err, unwrapping as needed.
func Code(err error) (syscall.Errno, bool) {
	var code syscall.Errno
	if stderrors.As(err, &code) {
		return code, true
	}
	return 0, false
}
