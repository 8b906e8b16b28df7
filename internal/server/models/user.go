// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered identity. Recipient validation is a lookup against
// this table, so an email only becomes shareable-to once its owner signed up.
type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash []byte

	// Confirmed is set once the sign-up confirmation code is verified.
	// Unconfirmed accounts cannot sign in and do not count as valid
	// recipients.
	Confirmed bool
	// ConfirmationCode is the pending 6-digit code, empty once confirmed.
	ConfirmationCode string
	CodeExpiresAt    time.Time

	CreatedAt time.Time
}
