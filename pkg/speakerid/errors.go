package speakerid

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a speakerid error.
type ErrorKind int

const (
	// KindEnrollment marks per-sample enrollment failures (unreadable
	// sample, unsupported locator format). Enrollment continues with the
	// remaining samples.
	KindEnrollment ErrorKind = iota

	// KindBackend marks embedding or scoring backend failures (model
	// errors, network failures). Recovered at the call site; recognition
	// surfaces an absent result plus a logged diagnostic.
	KindBackend

	// KindConfiguration marks setup failures (wrapped backend not found).
	// Fatal to the component being set up.
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindEnrollment:
		return "enrollment"
	case KindBackend:
		return "backend"
	case KindConfiguration:
		return "configuration"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a classified speakerid error.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speakerid: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("speakerid: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// backendErr builds a KindBackend error.
func backendErr(msg string, err error) *Error {
	return &Error{Kind: KindBackend, Msg: msg, Err: err}
}

// enrollErr builds a KindEnrollment error.
func enrollErr(msg string, err error) *Error {
	return &Error{Kind: KindEnrollment, Msg: msg, Err: err}
}

// AsError extracts *Error from an error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
