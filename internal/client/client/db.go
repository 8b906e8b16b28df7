package client

import (
	"context"
	"database/sql"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/vaultshare/vaultshare/internal/client/migrations"
	"github.com/vaultshare/vaultshare/internal/client/repositories/notifications"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Notifications notifications.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	// Set the database dialect
	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Notifications: notifications.NewSQLiteRepository(db),
	}
	return db, repos, nil
}
