// Package notifications persists the read/dismissed state of projected
// notifications. The notifications themselves are recomputed from server
// responses; only the per-id flags live here.
package notifications

import "context"

// State is the locally stored flags for one notification id.
type State struct {
	ID        string
	Read      bool
	Dismissed bool
}

type Repository interface {
	// Get returns the stored state for id, or (nil, nil) when none exists.
	Get(ctx context.Context, id string) (*State, error)

	// List returns all stored states keyed by notification id.
	List(ctx context.Context) (map[string]*State, error)

	// MarkRead upserts the read flag for id.
	MarkRead(ctx context.Context, id string) error

	// MarkDismissed upserts the dismissed flag for id.
	MarkDismissed(ctx context.Context, id string) error

	// Prune removes state for ids no longer produced by the projection.
	Prune(ctx context.Context, liveIDs []string) error
}
