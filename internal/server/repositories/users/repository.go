// Package users declares the server-side repository contract for the
// registered-user directory.
package users

import (
	"context"
	"time"

	"github.com/vaultshare/vaultshare/internal/server/models"
)

// Repository defines persistence operations for user identities.
type Repository interface {
	// Create stores a new, unconfirmed user and returns it with the
	// generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user registered under email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// FilterUnregistered returns the subset of emails that do NOT map to a
	// confirmed registered user. An empty result means every address is a
	// valid recipient.
	FilterUnregistered(ctx context.Context, emails []string) ([]string, error)

	// SetConfirmationCode replaces the pending confirmation code and its
	// expiry for the given email.
	SetConfirmationCode(ctx context.Context, email string, code string, expires time.Time) error

	// Confirm marks the user as confirmed and clears the pending code.
	Confirm(ctx context.Context, email string) error
}
