package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lalithx4/agroai/internal/domain/connectivity"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/infra/config"
)

// App encapsulates the HTTP server, the connectivity monitor, and the
// periodic sync drain.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	monitor *connectivity.Monitor
	queue   *syncqueue.Queue
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, monitor *connectivity.Monitor, queue *syncqueue.Queue) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		server:  server,
		monitor: monitor,
		queue:   queue,
	}
}

// Run starts the background loops and the HTTP server, blocking until
// shutdown. Regaining connectivity triggers an immediate drain; a ticker
// catches items whose backoff expired while the link stayed up.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.monitor.OnOnline(func(ctx context.Context) {
		a.logger.Info("connectivity restored, draining sync queue")
		a.queue.Drain(ctx)
	})
	a.monitor.OnOffline(func(context.Context) {
		a.logger.Info("connectivity lost, queueing locally")
	})
	go a.monitor.Start(runCtx)
	go a.drainLoop(runCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) drainLoop(ctx context.Context) {
	interval := a.cfg.Sync.DrainInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.monitor.IsOnline() {
				a.queue.Drain(ctx)
			}
		}
	}
}
