package main

import (
	"context"
	"log"

	"github.com/nailstudio/agenda/internal/devapi"
)

func main() {

	ctx := context.Background()
	cfg := devapi.Load()
	app, err := devapi.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
