package middleware

import (
	"net/http"

	"bookmarket/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTが有効でも、ユーザーが消えた・停止された場合は通さない。
// roleはDBの値で上書きする（降格がすぐ効くように）。
func ActiveUserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			rawUserID := c.Get(CtxUserIDKey)
			userID, ok := rawUserID.(int64)
			if !ok || userID <= 0 {
				return unauthorized(c)
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil {
				return unauthorized(c)
			}

			if !user.IsActive {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "account disabled"})
			}

			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
