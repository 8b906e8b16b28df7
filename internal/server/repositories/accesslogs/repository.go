// Package accesslogs declares the append-only access log repository.
package accesslogs

import (
	"context"

	"github.com/vaultshare/vaultshare/internal/server/models"
)

// Repository records and reads share access events. Entries are
// append-only; there is no update or delete operation.
type Repository interface {
	// Append records one access event and sets the generated id.
	Append(ctx context.Context, entry *models.AccessLogEntry) error

	// ListByShare returns the share's entries newest first.
	ListByShare(ctx context.Context, shareID string) ([]*models.AccessLogEntry, error)
}
