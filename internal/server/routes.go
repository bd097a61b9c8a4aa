package server

import (
	"net/http"

	"bookmarket/internal/config"
	"bookmarket/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, reg *prometheus.Registry, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	//ローカル保存の明細画像
	if cfg.Storage.Driver == "file" && cfg.Storage.UploadDir != "" {
		e.Static(cfg.Storage.PublicBaseURL, cfg.Storage.UploadDir)
	}

	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Book.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminBook.RegisterRoutes(e, cfg, userRepo)
	h.AuditLog.RegisterRoutes(e, cfg, userRepo)
}
