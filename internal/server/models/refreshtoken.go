package models

import "time"

// RefreshToken is a server-stored opaque token; rotated on every refresh.
type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}
