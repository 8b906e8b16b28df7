package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vaultshare/vaultshare/internal/common"
	"github.com/vaultshare/vaultshare/internal/dbx"
	"github.com/vaultshare/vaultshare/internal/logging"
	sc "github.com/vaultshare/vaultshare/internal/server/config"
	"github.com/vaultshare/vaultshare/internal/server/models"
	"github.com/vaultshare/vaultshare/internal/server/repositories/accesslogs"
	"github.com/vaultshare/vaultshare/internal/server/repositories/repomanager"
	"github.com/vaultshare/vaultshare/internal/server/repositories/shares"
	"github.com/vaultshare/vaultshare/internal/server/repositories/users"
	"github.com/vaultshare/vaultshare/internal/share"
)

// -------- test fakes --------

type fakeShareUsersRepo struct {
	users.Repository
	unregistered []string
	err          error
}

func (f *fakeShareUsersRepo) FilterUnregistered(ctx context.Context, emails []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.unregistered, nil
}

type fakeSharesRepo struct {
	shares.Repository

	created []*models.Share

	byID   *models.Share
	getErr error

	byOwner     []*models.Share
	byRecipient []*models.Share

	markedID      string
	markedOwnerID string
	markErr       error

	expired []*models.Share
	deleted []string
}

func (f *fakeSharesRepo) Create(ctx context.Context, s *models.Share) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSharesRepo) GetByID(ctx context.Context, id string) (*models.Share, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID, nil
}

func (f *fakeSharesRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]*models.Share, error) {
	return f.byOwner, nil
}

func (f *fakeSharesRepo) ListByRecipient(ctx context.Context, recipient string) ([]*models.Share, error) {
	return f.byRecipient, nil
}

func (f *fakeSharesRepo) MarkUploaded(ctx context.Context, id string, ownerID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedID = id
	f.markedOwnerID = ownerID
	return nil
}

func (f *fakeSharesRepo) ListExpiredBefore(ctx context.Context, cutoff int64) ([]*models.Share, error) {
	return f.expired, nil
}

func (f *fakeSharesRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAccessLogsRepo struct {
	accesslogs.Repository
	appended []*models.AccessLogEntry
	byShare  []*models.AccessLogEntry
}

func (f *fakeAccessLogsRepo) Append(ctx context.Context, entry *models.AccessLogEntry) error {
	entry.ID = int64(len(f.appended) + 1)
	f.appended = append(f.appended, entry)
	return nil
}

func (f *fakeAccessLogsRepo) ListByShare(ctx context.Context, shareID string) ([]*models.AccessLogEntry, error) {
	return f.byShare, nil
}

type fakeShareRepoManager struct {
	repomanager.RepositoryManager
	u *fakeShareUsersRepo
	s *fakeSharesRepo
	a *fakeAccessLogsRepo
}

func (m *fakeShareRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeShareRepoManager) Shares(db dbx.DBTX) shares.Repository         { return m.s }
func (m *fakeShareRepoManager) AccessLogs(db dbx.DBTX) accesslogs.Repository { return m.a }

// -------- helpers --------

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newShareMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newShareService(t *testing.T, db *sql.DB, m *fakeShareRepoManager) *ShareService {
	t.Helper()
	cfg := &sc.Config{
		S3Region:                    "us-east-1",
		S3RootUser:                  "x",
		S3RootPassword:              "y",
		S3BaseEndpoint:              "http://127.0.0.1:9000",
		S3Bucket:                    "bucket",
		SecretKey:                   "k",
		UploadURLValidityDuration:   15 * time.Minute,
		DownloadURLValidityDuration: 5 * time.Minute,
	}
	return NewShareService(db, m, cfg, discardLogger())
}

func stubPresign(t *testing.T, putURL, getURL string) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: putURL}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: getURL}, nil
	}
}

func fixedTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	t.Cleanup(func() { timeNow = orig })
	timeNow = func() time.Time { return at }
}

// -------- tests --------

func TestAuthorizeUpload_InvalidRecipientsBlockWholeFile(t *testing.T) {
	db, _ := newShareMockDB(t)
	defer db.Close()

	mgr := &fakeShareRepoManager{
		u: &fakeShareUsersRepo{unregistered: []string{"ghost@example.com"}},
		s: &fakeSharesRepo{},
		a: &fakeAccessLogsRepo{},
	}
	svc := newShareService(t, db, mgr)
	stubPresign(t, "http://put", "http://get")

	req := &models.Share{
		OwnerID:    "u1",
		OwnerEmail: "owner@example.com",
		FileName:   "report.pdf",
		Recipients: []string{"alice@example.com", "ghost@example.com"},
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}

	_, err := svc.AuthorizeUpload(context.Background(), req)
	if !errors.Is(err, common.ErrInvalidRecipients) {
		t.Fatalf("expected ErrInvalidRecipients, got %v", err)
	}

	var ire *InvalidRecipientsError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidRecipientsError, got %T", err)
	}
	if len(ire.Recipients) != 1 || ire.Recipients[0] != "ghost@example.com" {
		t.Fatalf("unexpected rejected set: %v", ire.Recipients)
	}

	if len(mgr.s.created) != 0 {
		t.Fatalf("share must not be persisted when a recipient is invalid")
	}
}

func TestAuthorizeUpload_Success(t *testing.T) {
	db, mock := newShareMockDB(t)
	defer db.Close()

	mgr := &fakeShareRepoManager{
		u: &fakeShareUsersRepo{},
		s: &fakeSharesRepo{},
		a: &fakeAccessLogsRepo{},
	}
	svc := newShareService(t, db, mgr)
	stubPresign(t, "http://presigned-put", "http://presigned-get")

	mock.ExpectBegin()
	mock.ExpectCommit()

	req := &models.Share{
		OwnerID:     "u1",
		OwnerEmail:  "Owner@Example.com",
		OwnerName:   "Owner",
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		FileSize:    1024,
		Recipients:  []string{"Alice@Example.com", "alice@example.com", "bob@example.com"},
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}

	grant, err := svc.AuthorizeUpload(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.UploadURL != "http://presigned-put" {
		t.Fatalf("unexpected upload url: %q", grant.UploadURL)
	}
	if grant.ShareID == "" {
		t.Fatalf("expected share id")
	}

	if len(mgr.s.created) != 1 {
		t.Fatalf("expected one persisted share, got %d", len(mgr.s.created))
	}
	created := mgr.s.created[0]
	if created.UploadStatus != models.UploadStatusPending {
		t.Fatalf("new share must start pending, got %q", created.UploadStatus)
	}
	if created.OwnerEmail != "owner@example.com" {
		t.Fatalf("owner email not normalized: %q", created.OwnerEmail)
	}
	if len(created.Recipients) != 2 {
		t.Fatalf("recipients not deduplicated: %v", created.Recipients)
	}
	if created.StorageKey == "" {
		t.Fatalf("expected storage key")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthorizeUpload_Validation(t *testing.T) {
	db, _ := newShareMockDB(t)
	defer db.Close()

	mgr := &fakeShareRepoManager{u: &fakeShareUsersRepo{}, s: &fakeSharesRepo{}, a: &fakeAccessLogsRepo{}}
	svc := newShareService(t, db, mgr)

	_, err := svc.AuthorizeUpload(context.Background(), &models.Share{
		Recipients: nil,
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	})
	if !errors.Is(err, common.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}

	_, err = svc.AuthorizeUpload(context.Background(), &models.Share{
		Recipients: []string{"alice@example.com"},
		ExpiresAt:  time.Now().Add(-time.Hour).Unix(),
	})
	if !errors.Is(err, common.ErrExpiryInPast) {
		t.Fatalf("expected ErrExpiryInPast, got %v", err)
	}
}

func TestMarkUploaded(t *testing.T) {
	db, _ := newShareMockDB(t)
	defer db.Close()

	mgr := &fakeShareRepoManager{u: &fakeShareUsersRepo{}, s: &fakeSharesRepo{}, a: &fakeAccessLogsRepo{}}
	svc := newShareService(t, db, mgr)

	if err := svc.MarkUploaded(context.Background(), "s1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mgr.s.markedID != "s1" || mgr.s.markedOwnerID != "u1" {
		t.Fatalf("mark not forwarded: %q %q", mgr.s.markedID, mgr.s.markedOwnerID)
	}

	mgr.s.markErr = common.ErrorNotFound
	if err := svc.MarkUploaded(context.Background(), "missing", "u1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListSent_StatusDerivedAtReadTime(t *testing.T) {
	db, _ := newShareMockDB(t)
	defer db.Close()

	now := time.Unix(1_700_000_000, 0)
	fixedTime(t, now)

	mgr := &fakeShareRepoManager{
		u: &fakeShareUsersRepo{},
		s: &fakeSharesRepo{byOwner: []*models.Share{
			{ID: "fresh", ExpiresAt: now.Unix() + 60},
			{ID: "stale", ExpiresAt: now.Unix() - 60},
			{ID: "edge", ExpiresAt: now.Unix()},
		}},
		a: &fakeAccessLogsRepo{},
	}
	svc := newShareService(t, db, mgr)

	result, err := svc.ListSent(context.Background(), "owner@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(result))
	}
	if result[0].Status != share.StatusActive {
		t.Fatalf("fresh share must be active, got %v", result[0].Status)
	}
	if result[1].Status != share.StatusExpired {
		t.Fatalf("stale share must be expired, got %v", result[1].Status)
	}
	if result[2].Status != share.StatusExpired {
		t.Fatalf("share at its expiry instant must be expired, got %v", result[2].Status)
	}
}

func TestAuthorizeDownload_Denials(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		byID    *models.Share
		getErr  error
		user    string
		wantErr error
	}{
		{
			name:    "unknown share",
			getErr:  common.ErrorNotFound,
			user:    "alice@example.com",
			wantErr: common.ErrorNotFound,
		},
		{
			name: "pending share hidden from recipients",
			byID: &models.Share{ID: "s1", Recipients: []string{"alice@example.com"},
				ExpiresAt: now.Unix() + 60, UploadStatus: models.UploadStatusPending},
			user:    "alice@example.com",
			wantErr: common.ErrorNotFound,
		},
		{
			name: "non-recipient",
			byID: &models.Share{ID: "s1", Recipients: []string{"alice@example.com"},
				ExpiresAt: now.Unix() + 60, UploadStatus: models.UploadStatusUploaded},
			user:    "mallory@example.com",
			wantErr: common.ErrShareForbidden,
		},
		{
			name: "expired",
			byID: &models.Share{ID: "s1", Recipients: []string{"alice@example.com"},
				ExpiresAt: now.Unix() - 1, UploadStatus: models.UploadStatusUploaded},
			user:    "alice@example.com",
			wantErr: common.ErrShareExpired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newShareMockDB(t)
			defer db.Close()
			fixedTime(t, now)

			mgr := &fakeShareRepoManager{
				u: &fakeShareUsersRepo{},
				s: &fakeSharesRepo{byID: tc.byID, getErr: tc.getErr},
				a: &fakeAccessLogsRepo{},
			}
			svc := newShareService(t, db, mgr)
			stubPresign(t, "http://put", "http://get")

			mock.ExpectBegin()
			mock.ExpectRollback()

			_, err := svc.AuthorizeDownload(context.Background(), "s1", tc.user, "")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if len(mgr.a.appended) != 0 {
				t.Fatalf("denied download must not be logged")
			}
		})
	}
}

func TestAuthorizeDownload_LogsEveryGrant(t *testing.T) {
	db, mock := newShareMockDB(t)
	defer db.Close()

	now := time.Unix(1_700_000_000, 0)
	fixedTime(t, now)

	mgr := &fakeShareRepoManager{
		u: &fakeShareUsersRepo{},
		s: &fakeSharesRepo{byID: &models.Share{
			ID:           "s1",
			StorageKey:   "shares/2023/11/14/abc",
			Recipients:   []string{"alice@example.com"},
			ExpiresAt:    now.Unix() + 3600,
			UploadStatus: models.UploadStatusUploaded,
		}},
		a: &fakeAccessLogsRepo{},
	}
	svc := newShareService(t, db, mgr)
	stubPresign(t, "http://put", "http://presigned-get")

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()

		url, err := svc.AuthorizeDownload(context.Background(), "s1", "Alice@Example.com", "")
		if err != nil {
			t.Fatalf("grant %d: unexpected error: %v", i, err)
		}
		if url != "http://presigned-get" {
			t.Fatalf("grant %d: unexpected url %q", i, url)
		}
	}

	if len(mgr.a.appended) != 3 {
		t.Fatalf("expected exactly one log entry per grant, got %d for 3 grants", len(mgr.a.appended))
	}
	for _, entry := range mgr.a.appended {
		if entry.UserEmail != "alice@example.com" {
			t.Fatalf("log email not normalized: %q", entry.UserEmail)
		}
		if entry.Action != common.ActionDownloaded {
			t.Fatalf("unexpected action: %q", entry.Action)
		}
		if entry.Timestamp != now.Unix() {
			t.Fatalf("unexpected timestamp: %d", entry.Timestamp)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthorizeDownload_PresignFailureCommitsNothing(t *testing.T) {
	db, mock := newShareMockDB(t)
	defer db.Close()

	now := time.Unix(1_700_000_000, 0)
	fixedTime(t, now)

	mgr := &fakeShareRepoManager{
		u: &fakeShareUsersRepo{},
		s: &fakeSharesRepo{byID: &models.Share{
			ID:           "s1",
			StorageKey:   "shares/2023/11/14/abc",
			Recipients:   []string{"alice@example.com"},
			ExpiresAt:    now.Unix() + 3600,
			UploadStatus: models.UploadStatusUploaded,
		}},
		a: &fakeAccessLogsRepo{},
	}
	svc := newShareService(t, db, mgr)
	stubPresign(t, "http://put", "http://get")

	origGet := presignGetObject
	t.Cleanup(func() { presignGetObject = origGet })
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign backend unavailable")
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	url, err := svc.AuthorizeDownload(context.Background(), "s1", "alice@example.com", "")
	if err == nil {
		t.Fatalf("expected error when the presign backend is unavailable")
	}
	if url != "" {
		t.Fatalf("unexpected url: %q", url)
	}

	if len(mgr.a.appended) != 0 {
		t.Fatalf("access log recorded for a grant that issued no credential: %d entries", len(mgr.a.appended))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	db, _ := newShareMockDB(t)
	defer db.Close()

	now := time.Unix(1_700_000_000, 0)
	fixedTime(t, now)

	mgr := &fakeShareRepoManager{
		u: &fakeShareUsersRepo{},
		s: &fakeSharesRepo{expired: []*models.Share{
			{ID: "old1", StorageKey: "k1"},
			{ID: "old2", StorageKey: "k2"},
		}},
		a: &fakeAccessLogsRepo{},
	}
	svc := newShareService(t, db, mgr)
	stubPresign(t, "http://put", "http://get")

	var deletedKeys []string
	origDelete := deleteObject
	t.Cleanup(func() { deleteObject = origDelete })
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		deletedKeys = append(deletedKeys, *in.Key)
		return &s3.DeleteObjectOutput{}, nil
	}

	n, err := svc.PurgeExpired(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 purged, got %d", n)
	}
	if len(deletedKeys) != 2 || deletedKeys[0] != "k1" || deletedKeys[1] != "k2" {
		t.Fatalf("unexpected object deletions: %v", deletedKeys)
	}
	if len(mgr.s.deleted) != 2 {
		t.Fatalf("expected 2 metadata deletions, got %v", mgr.s.deleted)
	}
}

func TestDedupeRecipients(t *testing.T) {
	got := DedupeRecipients([]string{"Bob@Example.com", "alice@example.com", "bob@example.com", "", " alice@example.com "})
	want := []string{"bob@example.com", "alice@example.com"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
