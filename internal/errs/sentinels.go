// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired indicates a share link past its expiration.
	ErrExpired = errors.New("expired")

	// ErrUnauthorized indicates a share password mismatch.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates malformed caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
)
