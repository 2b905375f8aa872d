package errors

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// ErrorHandlingMiddleware converts structured errors into JSON responses
// with the matching HTTP status, and logs internal errors with their cause.
func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Let echo's own HTTP errors (404 on unknown routes etc.) pass through.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structured := AsStructuredError(err)
			if structured.Type == TypeInternal || structured.Type == TypeExternal {
				slog.Error("request failed",
					"type", structured.Type,
					"message", structured.Message,
					"error", structured.Cause,
					"path", c.Request().URL.Path,
				)
			}

			return c.JSON(structured.HTTPStatus(), structured.ToResponse())
		}
	}
}
