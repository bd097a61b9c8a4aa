package handler

import (
	"net/http"

	"bookmarket/internal/config"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/books
type AdminBookHandler struct {
	uc *usecase.BookUsecase
}

// DI
func NewAdminBookHandler(uc *usecase.BookUsecase) *AdminBookHandler {
	return &AdminBookHandler{uc: uc}
}

type BookBulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type BookBulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

type BookStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=available sold"`
}

func (h *AdminBookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group(
		"/admin/books",
		middleware.AuthJWT(cfg),
		middleware.ActiveUserGuard(userRepo),
		middleware.AdminRoleGuard(),
	)

	admin.POST("/bulk-destroy", h.bulkDelete)
	admin.PUT("/:id", h.updateBook)
	admin.DELETE("/:id", h.deleteBook)
	admin.PATCH("/:id/status", h.updateStatus)
	admin.POST("/:id/recompute", h.recompute)
}

func (h *AdminBookHandler) updateBook(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req BookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Update(c.Request().Context(), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminBookHandler) deleteBook(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminBookHandler) bulkDelete(c echo.Context) error {
	var req BookBulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	n, err := h.uc.BulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, BookBulkDeleteResponse{Deleted: n})
}

// 本ステータスの直接上書き（注文は見ない）
func (h *AdminBookHandler) updateStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req BookStatusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.OverrideStatus(c.Request().Context(), adminID, id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminBookHandler) recompute(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Recompute(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
