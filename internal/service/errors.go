package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCredential is returned when login is attempted without a password.
	ErrEmptyCredential = errors.New("password required")
	// ErrBadCredential is returned when the password does not match the secret.
	ErrBadCredential = errors.New("incorrect password")
)

// InternalFault wraps an unexpected failure inside an operation.
// Its detail is for logs and the audit trail only.
type InternalFault struct {
	Op  string
	Err error
}

func (f *InternalFault) Error() string {
	return fmt.Sprintf("%s: internal fault: %v", f.Op, f.Err)
}

func (f *InternalFault) Unwrap() error {
	return f.Err
}

// ErrorKind classifies the outcome of a gateway operation.
type ErrorKind int

const (
	// KindNone means the operation succeeded.
	KindNone ErrorKind = iota
	KindEmptyCredential
	KindBadCredential
	KindInternalFault
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmptyCredential:
		return "empty_credential"
	case KindBadCredential:
		return "bad_credential"
	default:
		return "internal_fault"
	}
}

// Kind maps err to its ErrorKind. Any error that is not one of the
// credential errors is an internal fault.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyCredential):
		return KindEmptyCredential
	case errors.Is(err, ErrBadCredential):
		return KindBadCredential
	default:
		return KindInternalFault
	}
}
