// Package common defines shared constants and sentinel errors used across
// client and server layers of VaultShare. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Identity errors.
	ErrEmailTaken          = errors.New("email already registered")
	ErrNotConfirmed        = errors.New("account not confirmed")
	ErrInvalidCode         = errors.New("invalid confirmation code")
	ErrCodeExpired         = errors.New("confirmation code expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Share lifecycle errors.
	ErrInvalidRecipients = errors.New("invalid recipients")
	ErrNoRecipients      = errors.New("recipient list is empty")
	ErrExpiryInPast      = errors.New("expiry must be in the future")
	ErrShareExpired      = errors.New("share expired")
	ErrShareForbidden    = errors.New("not a recipient of this share")
)
