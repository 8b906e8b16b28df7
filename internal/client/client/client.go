// Package client implements the VaultShare API client: the HTTP transport
// with transparent token refresh, plus the local SQLite store for
// notification state.
package client

import (
	"context"

	"github.com/vaultshare/vaultshare/internal/client/models"
)

// Client is the transport-level API surface the services build on.
type Client interface {
	Close() error

	SignUp(ctx context.Context, email, password, name, phone string) (string, error)
	ConfirmSignUp(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Session() (*models.Session, error)

	GetUploadURL(ctx context.Context, fileName, contentType string, fileSize int64,
		recipients []string, expiresAt int64, screenshotsAllowed bool) (fileID string, uploadURL string, err error)
	MarkUploaded(ctx context.Context, fileID string) error
	GetSentFiles(ctx context.Context) ([]*models.SentShare, error)
	GetReceivedFiles(ctx context.Context) ([]*models.ReceivedShare, error)
	GetDownloadURL(ctx context.Context, fileID string) (string, error)
}
