package main

import (
	"context"
	"log"

	"github.com/velmaris/votekeep/internal/app"
	"github.com/velmaris/votekeep/internal/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)
}
