package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
)

// HeaderAPIKey is the header couriers present the shared secret in. Matching
// is case-insensitive per standard HTTP header semantics.
const HeaderAPIKey = "Apikey"

// APIKey rejects requests whose APIKEY header does not exactly match the
// configured secret. The comparison is constant-time. Rejection happens
// before the handler runs, so an unauthorized request never touches the
// store.
func APIKey(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				return domain.ErrInvalidAPIKey
			}
			return next(c)
		}
	}
}
