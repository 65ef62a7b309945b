// Package server owns the application lifecycle: background refreshers, the
// HTTP surface and graceful shutdown.
package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"TradeGate/internal/domain/service"
	"TradeGate/internal/services/news"
	"TradeGate/internal/services/policy"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	applogger "TradeGate/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	scheduler  *news.Scheduler
	policy     service.Policy
	updater    *policy.Updater
	reports    service.ReportStore
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	scheduler *news.Scheduler,
	policyModel service.Policy,
	updater *policy.Updater,
	reports service.ReportStore,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		scheduler: scheduler,
		policy:    policyModel,
		updater:   updater,
		reports:   reports,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load policy artifacts from disk. A missing model is not fatal; the
	// decision path answers MODEL_NOT_LOADED until a reload succeeds.
	if err := a.updater.Reload(); err != nil {
		a.log.Warn("policy artifacts not loaded at startup", applogger.Error(err))
	} else {
		a.log.Info("policy artifacts loaded",
			applogger.String("model", a.cfg.Model.Path),
			applogger.String("scaler", a.cfg.Model.ScalerPath))
	}

	a.scheduler.Start()
	a.log.Info("news scheduler started",
		applogger.Duration("interval", a.cfg.News.RefreshInterval))

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.policy.Close()

	if closer, ok := a.reports.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.log.Warn("report store close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
