package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// envelope is the response shape shared with the previous generation of the
// API: consumers key off success/message and poll data.status for progress.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func ok(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func okCount(c echo.Context, message string, data any, count int) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Count: &count})
}

func created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func accepted(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusAccepted, envelope{Success: true, Message: message, Data: data})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, envelope{Success: false, Message: message})
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
