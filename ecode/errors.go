package ecode

import (
	"errors"
	"fmt"
)

const (
	emptyMsg       = "empty"
	requiredMsg    = "required"
	invalidMsg     = "invalid"
	notSingularMsg = "not singular"
	mismatchMsg    = "does not match"
)

// Sentinel errors. Wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrInvalidArgument is a bad or contradictory query parameter
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIllegalState is an operation that is not available for the current request
	ErrIllegalState = errors.New("illegal state")
	// ErrInvalidToken is a pagination token that cannot be decoded
	ErrInvalidToken = errors.New("invalid pagination token")
	// ErrIncompatibleQuery is a pagination token paired with a different query
	ErrIncompatibleQuery = errors.New("pagination token incompatible with query")
	// ErrDecode is a response that does not match the requested types
	ErrDecode = errors.New("decode error")
)

// InvalidArgument returns an ErrInvalidArgument wrapping the formatted message
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IllegalState returns an ErrIllegalState wrapping the formatted message
func IllegalState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}

// InvalidToken returns an ErrInvalidToken wrapping the cause
func InvalidToken(cause error) error {
	return fmt.Errorf("%w: %v", ErrInvalidToken, cause)
}

// IncompatibleQuery returns an ErrIncompatibleQuery wrapping the formatted message
func IncompatibleQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIncompatibleQuery, fmt.Sprintf(format, args...))
}

// Decode returns an ErrDecode describing which field failed and why
func Decode(field string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrDecode, field, cause)
}

// FieldIsBlank returns field blank message
func FieldIsBlank(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], emptyMsg)
	}
	return emptyMsg
}

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], requiredMsg)
	}
	return requiredMsg
}

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], invalidMsg)
	}
	return invalidMsg
}

// NotSingular returns not singular message
func NotSingular(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], notSingularMsg)
	}
	return notSingularMsg
}

// Mismatch returns field mismatch message
func Mismatch(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], mismatchMsg)
	}
	return mismatchMsg
}
