// Package errors implements application-level errors. Every error that reaches
// the user carries a Type so that callers can decide whether it is scoped to a
// single distribution or fatal to the whole run.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/pkg/errors"
)

const width = 78

// Type classifies an Error.
type Type int

const (
	// Unknown errors are unexpected and were not classified.
	Unknown Type = iota
	// Resolution errors occur when a file or URL cannot be opened or fetched.
	Resolution
	// Format errors occur when a document is not valid YAML or lacks required keys.
	Format
	// User errors are caused by invalid flags or arguments.
	User
	// Exec errors occur when an external command fails.
	Exec
)

func (t Type) String() string {
	switch t {
	case Resolution:
		return "resolution"
	case Format:
		return "format"
	case User:
		return "user"
	case Exec:
		return "exec"
	default:
		return "unknown"
	}
}

// Error is an application-level error.
type Error struct {
	Type    Type
	Cause   error
	Message string

	// Troubleshooting is a human-readable hint shown by Report.
	Troubleshooting string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Type.String() + " error"
	}
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Report renders the error and its troubleshooting hint for display on a
// terminal.
func (e *Error) Report() string {
	msg := e.Error()
	if e.Troubleshooting == "" {
		return msg
	}
	return msg + "\n\n" + color.HiYellowString("TROUBLESHOOTING:") + "\n" + wordwrap.WrapString(e.Troubleshooting, width)
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t Type) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// Report renders err for the terminal, expanding application-level errors.
func Report(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		prefix := strings.TrimSuffix(err.Error(), e.Error())
		return prefix + e.Report()
	}
	return err.Error()
}

// Resolutionf builds a Resolution error.
func Resolutionf(cause error, format string, args ...interface{}) *Error {
	return &Error{Type: Resolution, Cause: cause, Message: fmt.Sprintf(format, args...)}
}

// Formatf builds a Format error.
func Formatf(cause error, format string, args ...interface{}) *Error {
	return &Error{Type: Format, Cause: cause, Message: fmt.Sprintf(format, args...)}
}

// Re-exported from github.com/pkg/errors so callers need a single import.
var (
	New    = errors.New
	Errorf = errors.Errorf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Cause  = errors.Cause
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
