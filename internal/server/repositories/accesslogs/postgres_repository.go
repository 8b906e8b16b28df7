package accesslogs

import (
	"context"
	"fmt"

	"github.com/vaultshare/vaultshare/internal/dbx"
	"github.com/vaultshare/vaultshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.AccessLogEntry) error {

	query :=
		`INSERT INTO access_logs (share_id, user_email, action, ts)
         VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.ShareID, entry.UserEmail, entry.Action, entry.Timestamp).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByShare(ctx context.Context, shareID string) ([]*models.AccessLogEntry, error) {
	query :=
		`SELECT id, share_id, user_email, action, ts
		 FROM access_logs
		 WHERE share_id = $1
		 ORDER BY id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, shareID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.AccessLogEntry
	for rows.Next() {
		e := &models.AccessLogEntry{}
		if err := rows.Scan(&e.ID, &e.ShareID, &e.UserEmail, &e.Action, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}
