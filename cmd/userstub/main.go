package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/usermgr/internal/buildinfo"
	"github.com/dmitrijs2005/usermgr/internal/server"
	"github.com/dmitrijs2005/usermgr/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
