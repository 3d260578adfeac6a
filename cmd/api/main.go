package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/config"
	"github.com/crm-obras-2n/crm-obras-backend/internal/bootstrap"
	"github.com/crm-obras-2n/crm-obras-backend/internal/cache"
	"github.com/crm-obras-2n/crm-obras-backend/internal/digest"
)

const serviceName = "crm-obras-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	var pub digest.Publisher
	if app.Publisher != nil {
		pub = app.Publisher
	}
	scheduler := digest.NewScheduler(app.Projects, pub, digest.Options{
		Spec:     cfg.App.DigestCron,
		Channel:  cache.DigestChannel,
		Location: cfg.Location(),
		Logger:   logger,
	})
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDepsFor(app, serviceName))
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
