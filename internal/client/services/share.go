// Package services contains application services for the VaultShare
// client: batch share submission, downloads, and the notification
// projection.
package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vaultshare/vaultshare/internal/client/client"
	"github.com/vaultshare/vaultshare/internal/client/models"
	"github.com/vaultshare/vaultshare/internal/netx"
)

var (
	ErrNoRecipients = errors.New("recipient list is empty")
	ErrExpiryInPast = errors.New("expiry must be in the future")
)

type ShareService interface {
	// SendBatch processes each file independently: authorize, upload the
	// bytes, confirm. One file's failure never aborts the others.
	SendBatch(ctx context.Context, requests []*models.ShareRequest) *models.BatchResult

	ListSent(ctx context.Context) ([]*models.SentShare, error)
	ListReceived(ctx context.Context) ([]*models.ReceivedShare, error)

	// Download fetches a shared file into destDir and returns the local path.
	Download(ctx context.Context, fileID string, fileName string, destDir string) (string, error)
}

type shareService struct {
	client client.Client
}

func NewShareService(client client.Client) ShareService {
	return &shareService{client: client}
}

// NormalizeRecipients lowercases addresses and collapses duplicates before
// anything goes on the wire.
func NormalizeRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	result := make([]string, 0, len(recipients))
	for _, r := range recipients {
		email := strings.ToLower(strings.TrimSpace(r))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		result = append(result, email)
	}
	return result
}

// validate applies the local checks that need no network call.
func validate(req *models.ShareRequest, now time.Time) error {
	if len(NormalizeRecipients(req.Recipients)) == 0 {
		return ErrNoRecipients
	}
	if req.ExpiresAt <= now.Unix() {
		return ErrExpiryInPast
	}
	return nil
}

func (s *shareService) sendOne(ctx context.Context, req *models.ShareRequest) (string, error) {

	if err := validate(req, time.Now()); err != nil {
		return "", err
	}

	info, err := os.Stat(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(req.FilePath))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileID, uploadURL, err := s.client.GetUploadURL(ctx,
		filepath.Base(req.FilePath), contentType, info.Size(),
		NormalizeRecipients(req.Recipients), req.ExpiresAt, req.ScreenshotsAllowed)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, uploadURL, contentType, data); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	if err := s.client.MarkUploaded(ctx, fileID); err != nil {
		return "", err
	}

	return fileID, nil
}

func (s *shareService) SendBatch(ctx context.Context, requests []*models.ShareRequest) *models.BatchResult {

	result := &models.BatchResult{Results: make([]models.FileResult, 0, len(requests))}

	for _, req := range requests {
		fileID, err := s.sendOne(ctx, req)
		if err != nil {
			result.Failed++
		} else {
			result.Sent++
		}
		result.Results = append(result.Results, models.FileResult{
			FilePath: req.FilePath,
			FileID:   fileID,
			Err:      err,
		})
	}

	return result
}

func (s *shareService) ListSent(ctx context.Context) ([]*models.SentShare, error) {
	return s.client.GetSentFiles(ctx)
}

func (s *shareService) ListReceived(ctx context.Context) ([]*models.ReceivedShare, error) {
	return s.client.GetReceivedFiles(ctx)
}

func (s *shareService) Download(ctx context.Context, fileID string, fileName string, destDir string) (string, error) {

	url, err := s.client.GetDownloadURL(ctx, fileID)
	if err != nil {
		return "", err
	}

	data, err := netx.DownloadFromPresignedURL(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	destPath := filepath.Join(destDir, fileName)
	if err := os.WriteFile(destPath, data, 0o600); err != nil {
		return "", fmt.Errorf("cannot save file: %w", err)
	}

	return destPath, nil
}
