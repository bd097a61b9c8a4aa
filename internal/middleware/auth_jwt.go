package middleware

import (
	"net/http"
	"strings"

	"bookmarket/internal/config"
	"bookmarket/internal/infra/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

// Authorization: Bearer <jwt> を検証して user_id / user_role を積む
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return unauthorized(c)
			}

			sub, err := token.Parse(cfg.JWTSecret, raw)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, sub.UserID)
			c.Set(CtxUserRoleKey, string(sub.Role))
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}
