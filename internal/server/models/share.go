package models

import "time"

// Upload states of a share's backing object.
const (
	UploadStatusPending  = "pending"
	UploadStatusUploaded = "uploaded"
)

// Share is one file made available to a set of recipients. The lifecycle
// status (active/expired) is deliberately absent: it is derived from
// ExpiresAt by share.Compute at every read.
type Share struct {
	ID         string
	OwnerID    string
	OwnerEmail string
	OwnerName  string

	FileName    string
	ContentType string
	FileSize    int64
	StorageKey  string

	// Recipients is the deduplicated, lowercased recipient email set.
	// Never empty once the share is persisted.
	Recipients []string

	CreatedAt time.Time
	// ExpiresAt is an absolute epoch-second instant, strictly later than
	// CreatedAt at authorization time.
	ExpiresAt int64

	ScreenshotsAllowed bool

	// UploadStatus is "pending" until the client confirms the bytes
	// reached the object store.
	UploadStatus string
}

// HasRecipient reports whether email is in the recipient set.
func (s *Share) HasRecipient(email string) bool {
	for _, r := range s.Recipients {
		if r == email {
			return true
		}
	}
	return false
}
