// Package share holds the derived lifecycle state of a shared file.
//
// Status is never stored: every reader (the Sent view, the Received view
// and download authorization) recomputes it from the stored expiry instant
// and its own clock via Compute. Keeping the computation in one place is
// what guarantees the three read paths can never disagree.
package share

import "time"

// Status is the derived lifecycle state of a share.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Compute derives the status of a share from its expiry instant
// (epoch seconds) and the caller's current time. A share is expired the
// instant now reaches the expiry; there is no transition back.
func Compute(expiresAt int64, now time.Time) Status {
	if now.Unix() >= expiresAt {
		return StatusExpired
	}
	return StatusActive
}

// IsExpired reports whether a share with the given expiry instant is
// expired at time now.
func IsExpired(expiresAt int64, now time.Time) bool {
	return Compute(expiresAt, now) == StatusExpired
}
