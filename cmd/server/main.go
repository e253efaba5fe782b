package main

import (
	"context"
	"log"

	"github.com/dkoroban/scoreboard/internal/server"
	"github.com/dkoroban/scoreboard/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
