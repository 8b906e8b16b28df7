// Package server initializes and runs the VaultShare server: database and
// migrations, the share and identity services, the HTTP API, and the
// optional expired-share janitor.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vaultshare/vaultshare/internal/logging"
	"github.com/vaultshare/vaultshare/internal/server/config"
	"github.com/vaultshare/vaultshare/internal/server/httpapi"
	"github.com/vaultshare/vaultshare/internal/server/repositories/repomanager"
	"github.com/vaultshare/vaultshare/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	shareService *services.ShareService
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, m, c, logger)
	ss := services.NewShareService(db, m, c, logger)

	return &App{config: c, logger: logger, db: db, userService: us, shareService: ss}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger, app.userService, app.shareService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// startJanitor periodically hard-deletes shares that have been expired for
// longer than the configured grace period.
func (app *App) startJanitor(ctx context.Context) {

	ticker := time.NewTicker(app.config.AutoDeleteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.shareService.PurgeExpired(ctx, app.config.AutoDeleteGracePeriod)
			if err != nil {
				app.logger.Error(ctx, "janitor error", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired shares purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.AutoDeleteExpired {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startJanitor(ctx)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
