package main

import (
	"context"
	"log"
	"os"

	"github.com/lostgates/identity/internal/client/api"
	"github.com/lostgates/identity/internal/client/cli"
	"github.com/lostgates/identity/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	client := api.NewClient(cfg.ServerAddress)
	app := cli.NewApp(client, os.Stdin, os.Stdout)

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
