package main

import (
	"context"
	"log"

	"github.com/offcampus/rollcall/internal/authority"
	"github.com/offcampus/rollcall/internal/authority/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := authority.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
