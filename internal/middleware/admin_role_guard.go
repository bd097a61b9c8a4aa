package middleware

import (
	"net/http"
	"slices"

	"bookmarket/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AuthJWT（と ActiveUserGuard）の後ろに置く
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)
			if role == "" {
				return unauthorized(c)
			}
			if !slices.Contains(roles, model.Role(role)) {
				return c.JSON(http.StatusForbidden, errorResponse{Error: string(roles[0]) + " only"})
			}
			return next(c)
		}
	}
}

func AdminRoleGuard() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
