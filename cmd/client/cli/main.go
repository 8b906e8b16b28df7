package main

import (
	"context"
	"log"

	"github.com/vaultshare/vaultshare/internal/client/cli"
	"github.com/vaultshare/vaultshare/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())

}
