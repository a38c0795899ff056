// Package api exposes the task use cases over HTTP with echo.
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"tasklist/internal/services"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options tunes request handling.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	CORSOrigins     []string
}

func (o Options) withDefaults() Options {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 20
	}
	if o.MaxPageSize < o.DefaultPageSize {
		o.MaxPageSize = o.DefaultPageSize
	}
	return o
}

// NewServer builds an echo instance with the error handler, middleware and
// every route registered.
func NewServer(svc services.TaskService, health HealthChecker, logger *log.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	Register(e, svc, health, logger, opts)
	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc services.TaskService, health HealthChecker, logger *log.Logger, opts Options) {
	opts = opts.withDefaults()

	tasks := e.Group("/api/v1/tasks")
	tasks.POST("", createTask(svc, logger))
	tasks.GET("", listTasks(svc, opts))
	tasks.GET("/:id", getTask(svc))
	tasks.PUT("/:id", updateTask(svc, logger))
	tasks.DELETE("/:id", deleteTask(svc, logger))

	e.GET("/health", healthz(health, logger))
}
