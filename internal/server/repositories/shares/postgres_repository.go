package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultshare/vaultshare/internal/common"
	"github.com/vaultshare/vaultshare/internal/dbx"
	"github.com/vaultshare/vaultshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Share) error {

	query :=
		`INSERT INTO shares
		   (id, owner_id, owner_email, owner_name, file_name, content_type,
		    file_size, storage_key, created_at, expires_at, screenshots_allowed, upload_status)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.OwnerID, s.OwnerEmail, s.OwnerName, s.FileName, s.ContentType,
		s.FileSize, s.StorageKey, s.CreatedAt, s.ExpiresAt, s.ScreenshotsAllowed, s.UploadStatus)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, recipient := range s.Recipients {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO share_recipients (share_id, recipient_email) VALUES ($1, $2)`,
			s.ID, recipient)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Share, error) {
	query :=
		`SELECT id, owner_id, owner_email, owner_name, file_name, content_type,
		        file_size, storage_key, created_at, expires_at, screenshots_allowed, upload_status
		 FROM shares
		 WHERE id = $1
		 `

	s := &models.Share{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.OwnerID, &s.OwnerEmail, &s.OwnerName, &s.FileName, &s.ContentType,
		&s.FileSize, &s.StorageKey, &s.CreatedAt, &s.ExpiresAt, &s.ScreenshotsAllowed, &s.UploadStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	recipients, err := r.listRecipients(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Recipients = recipients

	return s, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*models.Share, error) {
	query :=
		`SELECT id, owner_id, owner_email, owner_name, file_name, content_type,
		        file_size, storage_key, created_at, expires_at, screenshots_allowed, upload_status
		 FROM shares
		 WHERE owner_email = $1
		 ORDER BY created_at DESC, id
		 `

	return r.list(ctx, query, ownerEmail)
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipient string) ([]*models.Share, error) {
	query :=
		`SELECT s.id, s.owner_id, s.owner_email, s.owner_name, s.file_name, s.content_type,
		        s.file_size, s.storage_key, s.created_at, s.expires_at, s.screenshots_allowed, s.upload_status
		 FROM shares s
		 JOIN share_recipients sr ON sr.share_id = s.id
		 WHERE sr.recipient_email = $1 AND s.upload_status = 'uploaded'
		 ORDER BY s.created_at DESC, s.id
		 `

	return r.list(ctx, query, recipient)
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, id string, ownerID string) error {
	query :=
		`UPDATE shares SET upload_status = 'uploaded'
		 WHERE id = $1 AND owner_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListExpiredBefore(ctx context.Context, cutoff int64) ([]*models.Share, error) {
	query :=
		`SELECT id, owner_id, owner_email, owner_name, file_name, content_type,
		        file_size, storage_key, created_at, expires_at, screenshots_allowed, upload_status
		 FROM shares
		 WHERE expires_at <= $1
		 ORDER BY expires_at, id
		 `

	return r.list(ctx, query, cutoff)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Share, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Share
	for rows.Next() {
		s := &models.Share{}
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.OwnerEmail, &s.OwnerName, &s.FileName, &s.ContentType,
			&s.FileSize, &s.StorageKey, &s.CreatedAt, &s.ExpiresAt, &s.ScreenshotsAllowed, &s.UploadStatus); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, s := range result {
		recipients, err := r.listRecipients(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Recipients = recipients
	}

	return result, nil
}

func (r *PostgresRepository) listRecipients(ctx context.Context, shareID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT recipient_email FROM share_recipients WHERE share_id = $1 ORDER BY recipient_email`,
		shareID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var recipients []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		recipients = append(recipients, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipients, nil
}
