package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, name, phone, password_hash, confirmation_code, code_expires_at)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Name, user.Phone, user.PasswordHash,
		user.ConfirmationCode, user.CodeExpiresAt).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, phone, password_hash, confirmed, confirmation_code, code_expires_at
		 FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	var codeExpires sql.NullTime
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.Phone, &user.PasswordHash,
		&user.Confirmed, &user.ConfirmationCode, &codeExpires)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if codeExpires.Valid {
		user.CodeExpiresAt = codeExpires.Time
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, name
		 FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FilterUnregistered(ctx context.Context, emails []string) ([]string, error) {
	unregistered := make([]string, 0, len(emails))

	query :=
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND confirmed)`

	// One lookup per address. Recipient lists are short (people, not
	// mailing lists), so this stays cheap and keeps the SQL portable.
	for _, email := range emails {
		var exists bool
		if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if !exists {
			unregistered = append(unregistered, email)
		}
	}

	return unregistered, nil
}

func (r *PostgresRepository) SetConfirmationCode(ctx context.Context, email string, code string, expires time.Time) error {
	query :=
		`UPDATE users SET confirmation_code = $2, code_expires_at = $3
		 WHERE email = $1 AND NOT confirmed
		 `

	res, err := r.db.ExecContext(ctx, query, email, code, expires)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Confirm(ctx context.Context, email string) error {
	query :=
		`UPDATE users SET confirmed = TRUE, confirmation_code = ''
		 WHERE email = $1
		 `

	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
