package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minimart/storefront-sync/internal/core/domain"
)

// CurrentUser exposes the live identity established at bootstrap.
type CurrentUser interface {
	User() *domain.User
}

// Admin rejects requests unless the live user carries the admin flag.
func Admin(current CurrentUser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := current.User()
			if u == nil || !u.IsAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
