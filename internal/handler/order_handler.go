package handler

import (
	"io"
	"net/http"

	"bookmarket/internal/config"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc     *usecase.OrderUsecase
	proofs *usecase.PaymentProofUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, proofs *usecase.PaymentProofUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, proofs: proofs}
}

type OrderCreateRequest struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
	//省略時は1
	Quantity        int64  `json:"quantity" validate:"omitempty,gte=1"`
	ShippingName    string `json:"shipping_name" validate:"required,max=255"`
	ShippingPhone   string `json:"shipping_phone" validate:"required,max=20"`
	ShippingAddress string `json:"shipping_address" validate:"required"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.ActiveUserGuard(userRepo))

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/payment-proof", h.uploadProof)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		BookID:          req.BookID,
		Quantity:        req.Quantity,
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, err := parsePaging(c, 20)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetMyOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.CancelOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// multipart: proof_image（必須）, sender_account_number（任意）
func (h *OrderHandler) uploadProof(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	fh, err := c.FormFile("proof_image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "proof_image required"})
	}
	if fh.Size > usecase.MaxProofSize {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "proof_image must be 2MB or smaller"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid proof_image"})
	}
	defer f.Close()

	//上限+1まで読んでサイズ超過を検出する
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxProofSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid proof_image"})
	}

	out, err := h.proofs.Upload(c.Request().Context(), userID, id, usecase.UploadPaymentProofInput{
		Filename:            fh.Filename,
		Data:                data,
		SenderAccountNumber: c.FormValue("sender_account_number"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
