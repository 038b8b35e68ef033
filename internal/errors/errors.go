package errors

import (
	"errors"
	"fmt"
)

// Common error types for the account client
var (
	// Local validation errors (never reach the network)
	ErrRequiredField      = errors.New("required field missing")
	ErrIncompleteOTP      = errors.New("incomplete otp code")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrMissingPayload     = errors.New("missing registration payload")
	ErrUnsupportedPurpose = errors.New("unsupported otp purpose")

	// Flow errors
	ErrFlowContextMissing = errors.New("flow context missing")
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// Remote errors, one per normalized kind
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network unreachable")

	// Storage errors
	ErrKeyNotFound     = errors.New("key not found")
	ErrUnknownScope    = errors.New("unknown storage scope")
	ErrNoSession       = errors.New("no session")
	ErrSealedStoreOpen = errors.New("sealed store could not be opened")
	ErrStoreCorrupt    = errors.New("stored data could not be decoded")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
