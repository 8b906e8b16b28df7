package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vaultshare/vaultshare/internal/common"
	"github.com/vaultshare/vaultshare/internal/dbx"
	"github.com/vaultshare/vaultshare/internal/logging"
	sc "github.com/vaultshare/vaultshare/internal/server/config"
	"github.com/vaultshare/vaultshare/internal/server/models"
	"github.com/vaultshare/vaultshare/internal/server/repositories/repomanager"
	"github.com/vaultshare/vaultshare/internal/share"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}

	timeNow = time.Now
)

// InvalidRecipientsError carries the rejected subset of a share request's
// recipient list. The whole file is blocked; nothing was persisted.
type InvalidRecipientsError struct {
	Recipients []string
}

func (e *InvalidRecipientsError) Error() string {
	return fmt.Sprintf("invalid recipients: %v", e.Recipients)
}

func (e *InvalidRecipientsError) Is(target error) bool {
	return target == common.ErrInvalidRecipients
}

// UploadGrant is the result of a successful upload authorization: a new
// share id plus a short-lived write credential for the object store.
type UploadGrant struct {
	ShareID   string
	UploadURL string
}

// ShareService implements the share lifecycle: upload authorization with
// the all-or-nothing recipient gate, sent/received listing, download
// authorization with access logging, and the expired-share purge policy.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewShareService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, l logging.Logger) *ShareService {
	return &ShareService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		logger:      l.With("module", "share_service"),
	}
}

// GetRandomStorageKey produces a date-bucketed object key for a new upload.
func GetRandomStorageKey() string {
	d := timeNow()
	return fmt.Sprintf("shares/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ShareService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return client, nil
}

func (s *ShareService) getPresignClient() (*s3.PresignClient, error) {
	client, err := s.getS3Client()
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// getPresignedPutURL issues a write credential for the given key. The
// content type is baked into the signature, so a PUT with a different
// Content-Type header fails the store's signature check.
func (s *ShareService) getPresignedPutURL(ctx context.Context, key string, contentType string) (string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	// Presigned PUT
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(s.config.UploadURLValidityDuration))

	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *ShareService) getPresignedGetURL(ctx context.Context, key string) (string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	// Presigned GET
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.DownloadURLValidityDuration))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// AuthorizeUpload validates one share request and, if every recipient maps
// to a registered user, persists the share as pending and issues a write
// credential. The recipient gate is all-or-nothing per file: a single
// unknown address blocks the whole file and nothing is persisted.
func (s *ShareService) AuthorizeUpload(ctx context.Context, req *models.Share) (*UploadGrant, error) {

	recipients := DedupeRecipients(req.Recipients)
	if len(recipients) == 0 {
		return nil, common.ErrNoRecipients
	}

	now := timeNow()
	if req.ExpiresAt <= now.Unix() {
		return nil, common.ErrExpiryInPast
	}

	userRepo := s.repomanager.Users(s.db)
	unregistered, err := userRepo.FilterUnregistered(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("error validating recipients: %w", err)
	}
	if len(unregistered) > 0 {
		return nil, &InvalidRecipientsError{Recipients: unregistered}
	}

	storageKey := GetRandomStorageKey()
	uploadURL, err := s.getPresignedPutURL(ctx, storageKey, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	newShare := &models.Share{
		ID:                 uuid.New().String(),
		OwnerID:            req.OwnerID,
		OwnerEmail:         NormalizeEmail(req.OwnerEmail),
		OwnerName:          req.OwnerName,
		FileName:           req.FileName,
		ContentType:        req.ContentType,
		FileSize:           req.FileSize,
		StorageKey:         storageKey,
		Recipients:         recipients,
		CreatedAt:          now,
		ExpiresAt:          req.ExpiresAt,
		ScreenshotsAllowed: req.ScreenshotsAllowed,
		UploadStatus:       models.UploadStatusPending,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Shares(tx).Create(ctx, newShare)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating share: %w", err)
	}

	s.logger.Info(ctx, "upload authorized",
		"share_id", newShare.ID, "owner", newShare.OwnerEmail, "recipients", len(recipients))

	return &UploadGrant{ShareID: newShare.ID, UploadURL: uploadURL}, nil
}

// MarkUploaded records that the object store confirmed byte receipt.
// Only the owning user may confirm.
func (s *ShareService) MarkUploaded(ctx context.Context, shareID string, ownerID string) error {
	repo := s.repomanager.Shares(s.db)

	if err := repo.MarkUploaded(ctx, shareID, ownerID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error updating share: %w", err)
	}

	return nil
}

// SentShare pairs a share with its access log for the Sent view.
type SentShare struct {
	Share      *models.Share
	Status     share.Status
	AccessLogs []*models.AccessLogEntry
}

// ListSent returns every share owned by ownerEmail with its access log and
// the status derived at query time.
func (s *ShareService) ListSent(ctx context.Context, ownerEmail string) ([]*SentShare, error) {
	shareRepo := s.repomanager.Shares(s.db)
	logRepo := s.repomanager.AccessLogs(s.db)

	items, err := shareRepo.ListByOwner(ctx, NormalizeEmail(ownerEmail))
	if err != nil {
		return nil, fmt.Errorf("error listing sent shares: %w", err)
	}

	now := timeNow()
	result := make([]*SentShare, 0, len(items))
	for _, item := range items {
		logs, err := logRepo.ListByShare(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing access logs: %w", err)
		}
		result = append(result, &SentShare{
			Share:      item,
			Status:     share.Compute(item.ExpiresAt, now),
			AccessLogs: logs,
		})
	}

	return result, nil
}

// ReceivedShare pairs a share with its access log for the Received view.
// No status is attached: the recipient view derives it client-side from
// the expiry instant.
type ReceivedShare struct {
	Share      *models.Share
	AccessLogs []*models.AccessLogEntry
}

// ListReceived returns every uploaded share addressed to recipient.
func (s *ShareService) ListReceived(ctx context.Context, recipient string) ([]*ReceivedShare, error) {
	shareRepo := s.repomanager.Shares(s.db)
	logRepo := s.repomanager.AccessLogs(s.db)

	items, err := shareRepo.ListByRecipient(ctx, NormalizeEmail(recipient))
	if err != nil {
		return nil, fmt.Errorf("error listing received shares: %w", err)
	}

	result := make([]*ReceivedShare, 0, len(items))
	for _, item := range items {
		logs, err := logRepo.ListByShare(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing access logs: %w", err)
		}
		result = append(result, &ReceivedShare{Share: item, AccessLogs: logs})
	}

	return result, nil
}

// AuthorizeDownload checks that the share exists and is uploaded, that the
// requester is a recipient, and that the share is not expired — against a
// current read of share state, never a cache. On success it appends
// exactly one access-log entry and issues a read credential. The check,
// the log append and the grant happen in one transaction; repeated
// downloads each produce their own entry.
func (s *ShareService) AuthorizeDownload(ctx context.Context, shareID string, userEmail string, action string) (string, error) {
	userEmail = NormalizeEmail(userEmail)
	if action == "" {
		action = common.ActionDownloaded
	}

	var url string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		shareRepo := s.repomanager.Shares(tx)

		item, err := shareRepo.GetByID(ctx, shareID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("error loading share: %w", err)
		}
		if item.UploadStatus != models.UploadStatusUploaded {
			// Pending shares are invisible to recipients.
			return common.ErrorNotFound
		}
		if !item.HasRecipient(userEmail) {
			return common.ErrShareForbidden
		}
		if share.IsExpired(item.ExpiresAt, timeNow()) {
			return common.ErrShareExpired
		}

		// Presign inside the transaction, before the log append: a failure
		// on either side aborts the whole grant, so no entry is ever
		// committed for a call that issued no credential.
		url, err = s.getPresignedGetURL(ctx, item.StorageKey)
		if err != nil {
			return fmt.Errorf("error presigning download: %w", err)
		}

		entry := &models.AccessLogEntry{
			ShareID:   item.ID,
			UserEmail: userEmail,
			Action:    action,
			Timestamp: timeNow().Unix(),
		}
		if err := s.repomanager.AccessLogs(tx).Append(ctx, entry); err != nil {
			return fmt.Errorf("error appending access log: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "download authorized", "share_id", shareID, "user", userEmail)
	return url, nil
}

// PurgeExpired hard-deletes shares that entered the expired state at least
// gracePeriod ago: the backing object first, then the metadata (recipients
// and access logs cascade). Returns how many shares were removed.
func (s *ShareService) PurgeExpired(ctx context.Context, gracePeriod time.Duration) (int, error) {
	repo := s.repomanager.Shares(s.db)

	cutoff := timeNow().Add(-gracePeriod).Unix()
	expired, err := repo.ListExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error listing expired shares: %w", err)
	}

	client, err := s.getS3Client()
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, item := range expired {
		bucket := s.config.S3Bucket
		if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{
			Bucket: &bucket,
			Key:    &item.StorageKey,
		}); err != nil {
			s.logger.Error(ctx, "error deleting object", "share_id", item.ID, "error", err.Error())
			continue
		}
		if err := repo.Delete(ctx, item.ID); err != nil {
			s.logger.Error(ctx, "error deleting share", "share_id", item.ID, "error", err.Error())
			continue
		}
		purged++
	}

	return purged, nil
}

// DedupeRecipients lowercases addresses and collapses duplicates,
// preserving first-seen order. Empty strings are dropped.
func DedupeRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	result := make([]string, 0, len(recipients))
	for _, r := range recipients {
		email := NormalizeEmail(r)
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
