package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*State, error) {
	s := &State{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT is_read, is_dismissed FROM notification_state WHERE id = ?`, id).
		Scan(&s.Read, &s.Dismissed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification state[%s]: %w", id, err)
	}
	return s, nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string]*State, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, is_read, is_dismissed FROM notification_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification state: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*State)
	for rows.Next() {
		s := &State{}
		if err := rows.Scan(&s.ID, &s.Read, &s.Dismissed); err != nil {
			return nil, fmt.Errorf("failed to scan notification state row: %w", err)
		}
		result[s.ID] = s
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification state rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_state (id, is_read) VALUES (?, 1)
		ON CONFLICT(id) DO UPDATE SET is_read = 1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read[%s]: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkDismissed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_state (id, is_dismissed) VALUES (?, 1)
		ON CONFLICT(id) DO UPDATE SET is_dismissed = 1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification dismissed[%s]: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Prune(ctx context.Context, liveIDs []string) error {
	if len(liveIDs) == 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM notification_state`); err != nil {
			return fmt.Errorf("failed to prune notification state: %w", err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(liveIDs)), ",")
	args := make([]any, 0, len(liveIDs))
	for _, id := range liveIDs {
		args = append(args, id)
	}

	query := fmt.Sprintf(`DELETE FROM notification_state WHERE id NOT IN (%s)`, placeholders)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to prune notification state: %w", err)
	}
	return nil
}
