package handler

import (
	"net/http"
	"strconv"

	"bookmarket/internal/config"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /books の公開APIと出品
type BookHandler struct {
	uc *usecase.BookUsecase
}

// DI
func NewBookHandler(uc *usecase.BookUsecase) *BookHandler {
	return &BookHandler{uc: uc}
}

// 出品・更新の入力。priceは "50000" でも 50000 でも受け付ける。
type BookRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition" validate:"required,oneof=new like_new good fair poor"`
}

func (r BookRequest) toInput() usecase.BookInput {
	return usecase.BookInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Condition:   r.Condition,
	}
}

func (h *BookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/books", h.list)
	e.GET("/books/:id", h.detail)

	e.POST("/books", h.create, middleware.AuthJWT(cfg), middleware.ActiveUserGuard(userRepo))
}

func (h *BookHandler) list(c echo.Context) error {
	page, limit, err := parsePaging(c, 20)
	if err != nil {
		return writeError(c, err)
	}

	var sellerID *int64
	if v := c.QueryParam("seller_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid seller_id"})
		}
		sellerID = &id
	}

	out, err := h.uc.List(c.Request().Context(), usecase.BookListInput{
		Page:      page,
		Limit:     limit,
		Q:         c.QueryParam("q"),
		Status:    c.QueryParam("status"),
		Condition: c.QueryParam("condition"),
		SellerID:  sellerID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) detail(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) create(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req BookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Create(c.Request().Context(), sellerID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
