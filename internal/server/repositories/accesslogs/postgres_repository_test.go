package accesslogs

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vaultshare/vaultshare/internal/server/models"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestAppend_SetsGeneratedID(t *testing.T) {
	repo, mock := newMockRepo(t)

	entry := &models.AccessLogEntry{
		ShareID:   "s1",
		UserEmail: "alice@example.com",
		Action:    "downloaded",
		Timestamp: 1700000000,
	}

	mock.ExpectQuery(`INSERT INTO access_logs`).
		WithArgs(entry.ShareID, entry.UserEmail, entry.Action, entry.Timestamp).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != 42 {
		t.Fatalf("id not populated: %d", entry.ID)
	}
}

func TestListByShare_NewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "share_id", "user_email", "action", "ts"}).
		AddRow(int64(2), "s1", "bob@example.com", "downloaded", int64(1700000100)).
		AddRow(int64(1), "s1", "alice@example.com", "downloaded", int64(1700000000))

	mock.ExpectQuery(`SELECT (.+) FROM access_logs`).WithArgs("s1").WillReturnRows(rows)

	entries, err := repo.ListByShare(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[1].ID != 1 {
		t.Fatalf("ordering not preserved: %+v", entries)
	}
}

func TestListByShare_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM access_logs`).WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "share_id", "user_email", "action", "ts"}))

	entries, err := repo.ListByShare(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
