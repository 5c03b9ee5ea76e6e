package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChainPulse/internal/handler/api"
	"ChainPulse/internal/usecase"
	"ChainPulse/internal/ws"
	pkgch "ChainPulse/pkg/clickhouse"
	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	"ChainPulse/pkg/http/middleware"
	pkgkafka "ChainPulse/pkg/kafka"
	applogger "ChainPulse/pkg/logger"
	"ChainPulse/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	collector  *usecase.MetricsCollector
	proc       *usecase.PointProcessor
	hub        *ws.Hub
	handler    *api.ChartsHandler
	consumer   *pkgkafka.Consumer
	kh         *usecase.KafkaPointsHandler
	chClient   *pkgch.Client
	refreshQ   *queue.RedisQueue
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.MetricsCollector,
	proc *usecase.PointProcessor,
	hub *ws.Hub,
	handler *api.ChartsHandler,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaPointsHandler,
	chClient *pkgch.Client,
	refreshQ *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		proc:      proc,
		hub:       hub,
		handler:   handler,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		refreshQ:  refreshQ,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// HTTP server with the dashboard API plus the websocket push endpoint.
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.httpServer.Echo().GET("/ws", a.hub.Serve)
	if a.cfg.Metrics.Enabled {
		a.httpServer.Echo().Use(echo.WrapMiddleware(middleware.Metrics(l, time.Second)))
	}

	// On-demand refresh queue
	if a.refreshQ != nil {
		a.refreshQ.RegisterJob(usecase.NewRefreshJob(a.collector, l))
		if err := a.refreshQ.Start(); err != nil {
			l.Error("refresh queue start error", applogger.Error(err))
			return err
		}
	}

	// Collector: initial refresh of every series, then per-series polling.
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Int("series", len(a.cfg.Series)))

	// Mirror consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop taking new refreshes first, then the poll loops.
	if a.refreshQ != nil {
		if err := a.refreshQ.Stop(shutdownCtx); err != nil {
			l.Warn("refresh queue stop error", applogger.Error(err))
		}
	}
	a.collector.Wait()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}
	a.hub.Close()

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Flush aggregated logs before the producer goes away.
	a.logger.RemoveCollector()

	// Close backend resources (publisher/archive)
	if a.proc != nil {
		a.proc.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
