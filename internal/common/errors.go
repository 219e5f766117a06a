// Package common defines shared constants and sentinel errors used across
// client and server layers of sealbox. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Input validation errors (malformed salt/nonce lengths, empty
	// password, schema violations at a boundary).
	ErrInvalidInput = errors.New("invalid input")

	// Cryptographic failure: GCM tag or envelope MAC mismatch. Covers both
	// "wrong password" and "tampered data"; the two are intentionally not
	// distinguishable. Terminal for the attempt, never retried.
	ErrAuthenticationFailed = errors.New("authentication failed: wrong password or corrupted data")

	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
