package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

// Created wraps a successful creation.
func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	slog.Info("bad request", slog.String("error", err.Error()))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.Info("bad request", slog.String("error", msg))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	slog.Info("not found", slog.String("error", msg))
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

// InternalError logs the cause but never leaks it to the client.
func InternalError(c echo.Context, err error) error {
	slog.Error("internal error", slog.String("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
