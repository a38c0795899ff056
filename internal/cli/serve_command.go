package cli

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"tasklist/internal/api"
	"tasklist/internal/config"
	"tasklist/internal/services"
)

// ServeCommand runs the HTTP API until its context is cancelled
type ServeCommand struct {
	app *App
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app}
}

// Execute starts the server and shuts it down gracefully once ctx is done.
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg := c.app.config
	logger := c.app.logger

	gateway, err := config.CreateRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.WithError(err).Warn("failed to close task store")
		}
	}()

	e := api.NewServer(services.NewTaskService(gateway), gateway, logger, api.Options{
		DefaultPageSize: cfg.Pagination.DefaultSize,
		MaxPageSize:     cfg.Pagination.MaxSize,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Server.Addr)
	}()
	logger.WithFields(log.Fields{
		"addr":   cfg.Server.Addr,
		"driver": cfg.Database.Driver,
		"cache":  cfg.CacheEnabled(),
	}).Info("tasklist server starting")

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
