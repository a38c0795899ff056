package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tasklist/internal/errors"
	"tasklist/internal/services"
)

const maxBodySize = 64 << 10

func createTask(svc services.TaskService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req taskRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		task, err := svc.Create(c.Request().Context(), toInput(req))
		if err != nil {
			return err
		}

		logger.WithFields(log.Fields{"task_id": task.ID, "name": task.Name}).Info("task created")
		c.Response().Header().Set(echo.HeaderLocation, c.Path()+"/"+task.ID)
		return c.JSON(http.StatusCreated, toTaskResponse(task))
	}
}

func updateTask(svc services.TaskService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req taskRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		task, err := svc.Update(c.Request().Context(), c.Param("id"), toInput(req))
		if err != nil {
			return err
		}

		logger.WithField("task_id", task.ID).Info("task updated")
		return c.JSON(http.StatusOK, toTaskResponse(task))
	}
}

func getTask(svc services.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := svc.FindByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toTaskResponse(task))
	}
}

func listTasks(svc services.TaskService, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := parsePageRequest(c, opts)
		if err != nil {
			return err
		}

		page, err := svc.FindAll(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toPageResponse(page))
	}
}

func deleteTask(svc services.TaskService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return err
		}

		logger.WithField("task_id", id).Info("task deleted")
		return c.NoContent(http.StatusNoContent)
	}
}

// bindBody decodes the JSON body only. Path and query parameters never
// populate the request.
func bindBody(c echo.Context, req *taskRequest) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	if err := dec.Decode(req); err != nil {
		if err == io.EOF {
			return errors.NewInvalidInputError("body", nil, "request body is required")
		}
		return errors.NewInvalidInputError("body", nil, "malformed JSON request")
	}
	return nil
}
