package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vaultshare/vaultshare/internal/common"
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

func TestCreate_ReturnsGeneratedID(t *testing.T) {
	repo, mock := newMockRepo(t)

	u := &models.User{
		Email:            "alice@example.com",
		Name:             "Alice",
		Phone:            "+12125550101",
		PasswordHash:     []byte("hash"),
		ConfirmationCode: "123456",
		CodeExpiresAt:    time.Now().Add(15 * time.Minute),
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.Email, u.Name, u.Phone, u.PasswordHash, u.ConfirmationCode, u.CodeExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("generated-uuid"))

	created, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "generated-uuid" {
		t.Fatalf("id not populated: %q", created.ID)
	}
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "email", "name", "phone", "password_hash", "confirmed", "confirmation_code", "code_expires_at",
	}).AddRow("u1", "alice@example.com", "Alice", "+12125550101", []byte("hash"), true, "", nil)

	mock.ExpectQuery(`SELECT (.+) FROM users`).WithArgs("alice@example.com").WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || !u.Confirmed {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM users`).WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "email", "name"}).
		AddRow("u1", "alice@example.com", "Alice")

	mock.ExpectQuery(`SELECT id, email, name\s+FROM users\s+WHERE id = \$1`).
		WithArgs("u1").WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	mock.ExpectQuery(`SELECT id, email, name\s+FROM users\s+WHERE id = \$1`).
		WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFilterUnregistered(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	unregistered, err := repo.FilterUnregistered(context.Background(),
		[]string{"alice@example.com", "ghost@example.com", "bob@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unregistered) != 1 || unregistered[0] != "ghost@example.com" {
		t.Fatalf("unexpected result: %v", unregistered)
	}
}

func TestSetConfirmationCode(t *testing.T) {
	repo, mock := newMockRepo(t)

	expires := time.Now().Add(15 * time.Minute)
	mock.ExpectExec(`UPDATE users SET confirmation_code`).
		WithArgs("alice@example.com", "654321", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetConfirmationCode(context.Background(), "alice@example.com", "654321", expires); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec(`UPDATE users SET confirmation_code`).
		WithArgs("ghost@example.com", "654321", expires).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetConfirmationCode(context.Background(), "ghost@example.com", "654321", expires); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users SET confirmed = TRUE`).
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Confirm(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
