package models

// Notification kinds produced by the projection.
const (
	NotificationAccess  = "access"
	NotificationExpiry  = "expiry"
	NotificationNewFile = "newFile"
)

// Notification is one projected event. ID is deterministic for a given
// underlying fact, so read/dismissed state stored locally keys on it and
// survives recomputation.
type Notification struct {
	ID        string
	Kind      string
	FileID    string
	FileName  string
	Actor     string
	Timestamp int64
	Message   string
	Read      bool
	Dismissed bool
}
