package errors

import (
	"errors"
	"fmt"
)

// Common error kinds for the site server
var (
	// Backend client lifecycle errors. Both are terminal for the process
	// lifetime unless the factory is explicitly reset.
	ErrConfiguration = errors.New("backend configuration missing")
	ErrConstruction  = errors.New("backend client construction failed")

	// Session errors. A failed session fetch is treated as "no session" at
	// most call sites, not surfaced as a hard error.
	ErrSession        = errors.New("session fetch failed")
	ErrSessionExpired = errors.New("session expired")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")

	// Data access errors
	ErrQuery    = errors.New("query failed")
	ErrNotFound = errors.New("not found")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// General errors
	ErrInternal = errors.New("internal error")
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
