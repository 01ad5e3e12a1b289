package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so the dispatcher can map to reply messages without
// leaking infrastructure details.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	// ErrInvalidCredential covers both "no pending credential" and "wrong
	// password"; callers must not distinguish the two.
	ErrInvalidCredential = errors.New("invalid credential")
	ErrAlreadyAuthorized = errors.New("already authorized")
)
