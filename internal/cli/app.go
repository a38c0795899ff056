package cli

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"tasklist/internal/config"
	"tasklist/internal/services"
)

// App holds the resolved configuration and logger shared by every command
type App struct {
	config *config.Config
	logger *log.Logger
	out    io.Writer
}

// openService opens the configured store and returns a task service over it.
// The returned func closes the store.
func (a *App) openService(ctx context.Context) (services.TaskService, func(), error) {
	gateway, err := config.CreateRepository(ctx, a.config, a.logger)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := gateway.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close task store")
		}
	}
	return services.NewTaskService(gateway), closeFn, nil
}

// withTimeout bounds one-shot commands by the application timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Application.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.Application.Timeout)
}
