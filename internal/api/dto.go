package api

import "time"

// taskRequest is the body of create and update requests.
type taskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type pageResponse struct {
	Content          []taskResponse `json:"content"`
	Page             int            `json:"page"`
	Size             int            `json:"size"`
	TotalElements    int64          `json:"totalElements"`
	TotalPages       int            `json:"totalPages"`
	NumberOfElements int            `json:"numberOfElements"`
	First            bool           `json:"first"`
	Last             bool           `json:"last"`
	Sort             []string       `json:"sort"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// apiError is the body of every error response.
type apiError struct {
	Status       int           `json:"status"`
	Error        string        `json:"error"`
	Code         string        `json:"code,omitempty"`
	Message      string        `json:"message"`
	DebugMessage string        `json:"debugMessage,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	SubErrors    []apiSubError `json:"subErrors,omitempty"`
}

type apiSubError struct {
	Object        string      `json:"object"`
	Field         string      `json:"field"`
	RejectedValue interface{} `json:"rejectedValue"`
	Message       string      `json:"message"`
	Code          string      `json:"code,omitempty"`
}
