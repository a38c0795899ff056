package api

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
	"tasklist/internal/services"
)

func toInput(req taskRequest) services.TaskInput {
	return services.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
	}
}

func toTaskResponse(task *domain.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
}

func toPageResponse(page *domain.TaskPage) pageResponse {
	content := make([]taskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		content = append(content, toTaskResponse(task))
	}
	sort := make([]string, 0, len(page.Sort))
	for _, o := range page.Sort {
		sort = append(sort, o.String())
	}
	return pageResponse{
		Content:          content,
		Page:             page.Page,
		Size:             page.Size,
		TotalElements:    page.TotalElements,
		TotalPages:       page.TotalPages(),
		NumberOfElements: len(content),
		First:            page.IsFirst(),
		Last:             page.IsLast(),
		Sort:             sort,
	}
}

// parsePageRequest reads page, size and the repeatable sort parameter.
// Sizes above the maximum are capped.
func parsePageRequest(c echo.Context, opts Options) (domain.PageRequest, error) {
	req := domain.PageRequest{Page: 0, Size: opts.DefaultPageSize}

	if raw := strings.TrimSpace(c.QueryParam("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return req, errors.NewInvalidInputError("page", raw, "must be a non-negative integer")
		}
		req.Page = page
	}

	if raw := strings.TrimSpace(c.QueryParam("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return req, errors.NewInvalidInputError("size", raw, "must be a positive integer")
		}
		req.Size = min(size, opts.MaxPageSize)
	}

	for _, raw := range c.QueryParams()["sort"] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		order, err := domain.ParseOrder(raw)
		if err != nil {
			return req, err
		}
		req.Sort = append(req.Sort, order)
	}
	return req, nil
}
