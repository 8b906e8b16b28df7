package models

// AccessLogEntry is one append-only access record attached to a share.
// Ordering is insertion order; the newest entry drives "last accessed by".
type AccessLogEntry struct {
	ID        int64
	ShareID   string
	UserEmail string
	Action    string
	// Timestamp is epoch seconds.
	Timestamp int64
}
