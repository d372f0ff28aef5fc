package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StructScan/internal/domain/repository"
	"StructScan/internal/scheduler"
	"StructScan/internal/service/pricefeed"
	"StructScan/pkg/cache"
	pkgch "StructScan/pkg/clickhouse"
	"StructScan/pkg/config"
	xhttp "StructScan/pkg/http"
	applogger "StructScan/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP API, the optional
// price stream and scan scheduler, and orderly teardown of every client.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	handler   xhttp.Handler
	sched     *scheduler.Scheduler
	prices    domrepo.PriceSource
	chClient  *pkgch.Client
	cache     cache.Service
	publisher domrepo.Publisher

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	prices domrepo.PriceSource,
	chClient *pkgch.Client,
	c cache.Service,
	publisher domrepo.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		sched:     sched,
		prices:    prices,
		chClient:  chClient,
		cache:     c,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		path := a.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		opts = append(opts, xhttp.WithMetricsPath(path))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	// WS price feeds own a connection; start it before the first scan can run.
	if stream, ok := a.prices.(*pricefeed.StreamSource); ok {
		if err := stream.Start(ctx); err != nil {
			a.logger.Error("price stream start error", applogger.Error(err))
			return err
		}
	}

	if a.sched != nil && a.cfg.Scheduler.Enabled {
		if err := a.sched.Register(a.cfg.Scheduler.CronSpec); err != nil {
			a.logger.Error("scheduler register error", applogger.Error(err))
			return err
		}
		a.sched.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("scan service started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Scan.Symbols),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.sched != nil && a.cfg.Scheduler.Enabled {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if stream, ok := a.prices.(*pricefeed.StreamSource); ok {
		if err := stream.Close(); err != nil {
			a.logger.Warn("price stream close error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
