package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

func healthz(health HealthChecker, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()

		if err := health.Ping(ctx); err != nil {
			logger.WithError(err).Warn("health check failed")
			return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "DOWN", Database: "DOWN"})
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "UP", Database: "UP"})
	}
}
