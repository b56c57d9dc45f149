package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/api/middleware"
	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/service"
)

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, model.ResponseApi{Success: true, ApiMessage: message, Data: data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ResponseApi{Error: "Invalid request: " + err.Error()})
}

// statusOf maps service errors to HTTP statuses. Not found is checked before
// upstream because a missing external page is both.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrStoreConfig):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal server error"
	} else if status >= http.StatusBadGateway {
		slog.Warn("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, model.ResponseApi{Error: msg})
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
