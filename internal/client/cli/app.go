package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/vaultshare/vaultshare/internal/client/client"
	"github.com/vaultshare/vaultshare/internal/client/config"
	"github.com/vaultshare/vaultshare/internal/client/services"

	_ "modernc.org/sqlite"
)

type App struct {
	config        *config.Config
	client        client.Client
	shares        services.ShareService
	notifications services.NotificationService
	db            *sql.DB
	reader        *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewVaultShareClient(c.ServerEndpointAddr)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:        c,
		client:        apiClient,
		shares:        services.NewShareService(apiClient),
		notifications: services.NewNotificationService(apiClient, repos.Notifications),
		db:            db,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isSignedIn() bool {
	_, err := a.client.Session()
	return err == nil
}

func (a *App) getStatus() string {
	session, err := a.client.Session()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("(%s)", session.Email)
}

// Run starts the REPL and blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	defer a.client.Close()

	log.Println("Welcome to VaultShare CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
