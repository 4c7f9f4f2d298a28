package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	pkgch "NarrativeRadar/pkg/clickhouse"
	"NarrativeRadar/pkg/config"
	xhttp "NarrativeRadar/pkg/http"
	pkgkafka "NarrativeRadar/pkg/kafka"
	applogger "NarrativeRadar/pkg/logger"
	"NarrativeRadar/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	queue      *queue.RedisQueue
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		handler:  handler,
		queue:    q,
		chClient: chClient,
		producer: producer,
		log:      log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start the job queue workers if one is configured
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("job queue start error", applogger.Error(err))
			return err
		}
		a.queue.StartRetryProcessor()
		a.log.Info("job queue started")
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("adapter", a.cfg.Source.Adapter),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
