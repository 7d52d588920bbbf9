package middleware

import (
	"errors"
	"net/http"

	"github.com/courtmix/mixing-service/internal/dto"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as the JSON message envelope. Handlers
// map domain errors to echo.HTTPError themselves; anything else is an
// unexpected failure, logged here and reported as a plain 500.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		} else {
			logger.Error("unhandled request error",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
			)
			msg = "internal server error"
		}

		_ = c.JSON(code, dto.ErrorResponse{Message: msg})
	}
}
