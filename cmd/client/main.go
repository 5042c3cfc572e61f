package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/usermgr/internal/buildinfo"
	"github.com/dmitrijs2005/usermgr/internal/client/cli"
	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/config"
	"github.com/dmitrijs2005/usermgr/internal/client/repositories/kv"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
	"github.com/dmitrijs2005/usermgr/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.NewZap(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	// SIGINT and SIGTERM keep their default action: the REPL blocks on
	// terminal reads, so a trapped signal could not end the prompt.
	ctx := context.Background()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "client stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	db, err := client.OpenDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := session.NewStore(kv.NewStore(db))

	api, err := client.NewHTTPClient(cfg.ServerBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	return cli.NewApp(api, store, logger, os.Stdin, os.Stdout).Run(ctx)
}
