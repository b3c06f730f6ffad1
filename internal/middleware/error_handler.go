package middleware

import (
	"errors"
	"net/http"

	"nickstore/domain"
	"nickstore/pkg/logger"
	jsonres "nickstore/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the fallback for errors that escape the handlers.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	label := "INTERNAL_SERVER_ERROR"
	message := "Something went wrong"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		label = http.StatusText(code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case errors.Is(err, domain.ErrUnauthorized):
		code, label, message = http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		code, label, message = http.StatusForbidden, "FORBIDDEN", "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		code, label, message = http.StatusNotFound, "NOT_FOUND", "Resource not found"
	case errors.Is(err, domain.ErrConflict):
		code, label, message = http.StatusConflict, "CONFLICT", "Resource conflict"
	case errors.Is(err, domain.ErrUpstream):
		code, label, message = http.StatusBadGateway, "UPSTREAM_ERROR", "Payment gateway unavailable"
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled error", err, "path", c.Request().URL.Path)
	}

	_ = c.JSON(code, jsonres.Error(label, message, nil))
}
