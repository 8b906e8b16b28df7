// Package shares declares the share-registry repository contract.
package shares

import (
	"context"

	"github.com/vaultshare/vaultshare/internal/server/models"
)

// Repository persists Share metadata and its recipient set. Lifecycle
// status is never written: readers derive it from ExpiresAt.
type Repository interface {
	// Create persists the share row and its recipient rows. Callers run it
	// inside a transaction so a share can never be half-recorded.
	Create(ctx context.Context, s *models.Share) error

	// GetByID returns the share with its recipient set, or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Share, error)

	// ListByOwner returns every share owned by ownerEmail with recipient
	// sets populated, ordered newest first (stable across repeats).
	ListByOwner(ctx context.Context, ownerEmail string) ([]*models.Share, error)

	// ListByRecipient returns every uploaded share addressed to recipient,
	// ordered newest first.
	ListByRecipient(ctx context.Context, recipient string) ([]*models.Share, error)

	// MarkUploaded flips the share's upload status to "uploaded".
	MarkUploaded(ctx context.Context, id string, ownerID string) error

	// ListExpiredBefore returns shares whose expiry instant is at or before
	// cutoff (epoch seconds), for the auto-delete policy.
	ListExpiredBefore(ctx context.Context, cutoff int64) ([]*models.Share, error)

	// Delete hard-removes the share metadata (recipients and access logs
	// cascade).
	Delete(ctx context.Context, id string) error
}
