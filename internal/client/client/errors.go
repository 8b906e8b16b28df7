package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("file not found")
	ErrForbidden    = errors.New("not a recipient of this file")
	ErrShareExpired = errors.New("share expired")
	ErrNotSignedIn  = errors.New("not signed in")
)

// InvalidRecipientsError reports the subset of recipients the server
// rejected for one file.
type InvalidRecipientsError struct {
	Recipients []string
}

func (e *InvalidRecipientsError) Error() string {
	return fmt.Sprintf("invalid recipients: %v", e.Recipients)
}
