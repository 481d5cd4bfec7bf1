// Package uierr defines the error taxonomy shared by the paywall mapper, layout
// builders and screen controller.
package uierr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check against these.
var (
	ErrDecodingFailed  = errors.New("decoding failed")
	ErrUnsupportedData = errors.New("unsupported data")
	ErrWrongParameter  = errors.New("wrong parameter")
	ErrUserCanceled    = errors.New("user canceled")
)

// Kind classifies an Error.
type Kind uint8

const (
	KindDecodingFailed Kind = iota + 1
	KindUnsupportedData
	KindWrongParameter
	KindUserCanceled
)

func (k Kind) String() string {
	switch k {
	case KindDecodingFailed:
		return "DECODING_FAILED"
	case KindUnsupportedData:
		return "UNSUPPORTED_DATA"
	case KindWrongParameter:
		return "WRONG_PARAMETER"
	case KindUserCanceled:
		return "USER_CANCELED"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindDecodingFailed:
		return ErrDecodingFailed
	case KindUnsupportedData:
		return ErrUnsupportedData
	case KindWrongParameter:
		return ErrWrongParameter
	case KindUserCanceled:
		return ErrUserCanceled
	}
	return nil
}

// Error is a structured paywall error. It unwraps to its Kind's sentinel and,
// when set, to the wrapped cause.
type Error struct {
	Kind    Kind
	Field   string // document path or parameter name, may be empty
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg += " [" + e.Field + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// DecodingFailed reports a missing or malformed required document field.
func DecodingFailed(field, format string, args ...any) *Error {
	return &Error{Kind: KindDecodingFailed, Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedData reports an enumerant the mapper does not know.
func UnsupportedData(field, value string) *Error {
	return &Error{Kind: KindUnsupportedData, Field: field, Message: fmt.Sprintf("unknown value %q", value)}
}

// WrongParameter reports caller misuse.
func WrongParameter(field, format string, args ...any) *Error {
	return &Error{Kind: KindWrongParameter, Field: field, Message: fmt.Sprintf(format, args...)}
}

// UserCanceled wraps a commerce cancellation.
func UserCanceled(cause error) *Error {
	return &Error{Kind: KindUserCanceled, Message: "purchase dismissed", Err: cause}
}

// Wrap attaches a cause to a structured error of the given kind.
func Wrap(kind Kind, field string, err error) *Error {
	return &Error{Kind: kind, Field: field, Err: err}
}

// KindOf returns the Kind of err, or 0 when err carries no paywall kind.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrDecodingFailed):
		return KindDecodingFailed
	case errors.Is(err, ErrUnsupportedData):
		return KindUnsupportedData
	case errors.Is(err, ErrWrongParameter):
		return KindWrongParameter
	case errors.Is(err, ErrUserCanceled):
		return KindUserCanceled
	}
	return 0
}
