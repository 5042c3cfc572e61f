// Package server runs the stub user service as a standalone process so the
// client can be tried out without the real backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/client/usertest"
	"github.com/dmitrijs2005/usermgr/internal/logging"
	"github.com/dmitrijs2005/usermgr/internal/server/config"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	service *usertest.Server
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(c, os.Stdout)
}

func newApp(c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.NewSlogJSON(logOut, c.LogLevel)
	if err != nil {
		return nil, err
	}

	svc := usertest.New(
		usertest.WithSecret([]byte(c.SecretKey)),
		usertest.WithTokenTTL(c.TokenValidityDuration),
		usertest.WithLoginLimit(c.LoginLimit),
		usertest.WithLogger(logger.With("component", "userstub")),
	)

	return &App{config: c, logger: logger, service: svc}, nil
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

// Serve handles requests on l until ctx is cancelled, then shuts down
// gracefully.
func (app *App) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           app.service.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	app.logger.Info(ctx, "stub user service listening",
		"addr", l.Addr().String(),
		"admin", usertest.SeedAdminEmail,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	app.logger.Info(ctx, "stub user service stopped")
	return nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	l, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.ListenAddr, err)
	}
	return app.Serve(ctx, l)
}
