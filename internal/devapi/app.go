package devapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nailstudio/agenda/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *Config
	logger logging.Logger
	server *Server
}

func NewApp(ctx context.Context, c *Config) (*App, error) {
	zl := logging.NewZerolog(os.Stdout, c.LogLevel, c.LogPretty)

	srv, err := NewServer(ctx, c, zl.Zerolog())
	if err != nil {
		return nil, err
	}
	return &App{config: c, logger: zl, server: srv}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "listening", "addr", app.config.Addr)
	if err := app.server.Echo.Start(app.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server stopped", "error", err)
		cancelFunc()
	}
}

// Run serves until the process is signalled or the listener fails, then
// shuts the server down gracefully.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting development API...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Echo.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown failed", "error", err)
	}

	wg.Wait()
	if err := app.server.Close(); err != nil {
		app.logger.Error(ctx, "failed to close database", "error", err)
	}
	app.logger.Info(ctx, "stopped")
}
