package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard
var (
	// Session errors
	ErrNoSession       = errors.New("no session")
	ErrSessionCorrupt  = errors.New("persisted session is corrupt")
	ErrInvalidRole     = errors.New("invalid role")
	ErrSessionNotFound = errors.New("session not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	// SSO errors
	ErrSSODisabled   = errors.New("single sign-on is not configured")
	ErrInvalidState  = errors.New("invalid state parameter")
	ErrInvalidNonce  = errors.New("invalid nonce")
	ErrMissingClaims = errors.New("identity token is missing required claims")

	// Page errors
	ErrRecordNotFound = errors.New("record not found")
	ErrBusy           = errors.New("a request is already in progress")
	ErrNoDialog       = errors.New("no dialog is open")
	ErrNoConfirmation = errors.New("no deletion is awaiting confirmation")
	ErrDiscarded      = errors.New("page was discarded before the response arrived")
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
