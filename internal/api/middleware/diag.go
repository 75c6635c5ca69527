package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Diagnostics records non-standard requests (unsupported methods, unmatched
// routes) in the rotated diagnostic log. It only observes; the error still
// propagates to the central error handler, and a log failure never affects
// the request.
func Diagnostics(diag zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			var he *echo.HTTPError
			if errors.As(err, &he) &&
				(he.Code == http.StatusMethodNotAllowed || he.Code == http.StatusNotFound) {
				diag.Warn().
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Int("status", he.Code).
					Msg("received non-standard request")
			}
			return err
		}
	}
}
