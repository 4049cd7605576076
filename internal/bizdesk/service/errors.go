package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrNoOrganization          = errors.New("principal has no organization")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// ErrAccessDenied covers both a foreign tenant's resource and a missing
	// one. Callers must not be able to tell them apart.
	ErrAccessDenied = errors.New("access denied")

	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidToken           = errors.New("invalid invitation token")
	ErrTokenUsed              = errors.New("invitation already used")
	ErrTokenExpired           = errors.New("invitation expired")
	ErrEmailMismatch          = errors.New("email does not match invitation")
	ErrInvalidRole            = errors.New("invalid role")

	ErrInvalidRequest          = errors.New("invalid request")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// RequestError is a malformed-input error carrying a caller-facing reason.
// It matches ErrInvalidRequest with errors.Is.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string { return "invalid request: " + e.Reason }

func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

func invalid(format string, args ...any) error {
	return &RequestError{Reason: fmt.Sprintf(format, args...)}
}
