package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookmarket/internal/config"
	"bookmarket/internal/handler"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ルーティングに必要なハンドラ一式
type Handlers struct {
	Auth       *handler.AuthHandler
	Book       *handler.BookHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	AdminBook  *handler.AdminBookHandler
	AuditLog   *handler.AdminAuditLogHandler
}

// echoを組み立てる（起動はしない）。テストからもこれを使う。
func New(cfg config.Config, log *zap.Logger, reg *prometheus.Registry, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	//multipartの上限（画像2MB + フォーム分の余裕）
	e.Use(echomw.BodyLimit("3M"))

	RegisterRoutes(e, cfg, reg, userRepo, h)
	return e
}

// echo.HTTPError（404/405など）も {"error": "..."} で返す
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(he.Code)
			}
		} else {
			log.Error("unhandled error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, handler.ErrorResponse{Error: msg})
	}
}

// SIGTERM等で ctx が終わったら graceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down http server")
	return e.Shutdown(shutdownCtx)
}
