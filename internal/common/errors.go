// Package common defines shared constants and sentinel errors used across
// the identity service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound         = errors.New("not found")
	ErrorStoreUnavailable = errors.New("store unavailable")

	// Registration conflicts. The unique indexes on users.username and
	// users.email are the source of truth; concurrent registrations that
	// lose the race surface as one of these.
	ErrorUsernameExists = errors.New("username already exists")
	ErrorEmailExists    = errors.New("email already exists")
	ErrorInvalidRole    = errors.New("invalid role")

	// Login errors. Unknown username and wrong password are deliberately
	// indistinguishable.
	ErrorInvalidCredentials = errors.New("invalid username or password")

	// Service-level errors (generic/internal flow control).
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// Token errors (invalid signature, malformed structure, or freshness).
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidTokenPurpose = errors.New("invalid token purpose")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrResetTokenMismatch  = errors.New("reset token mismatch or already used")

	// Two-factor errors.
	ErrorInvalidCode = errors.New("invalid two-factor code")
)
