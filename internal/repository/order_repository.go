package repository

import (
	"context"
	"time"

	"bookmarket/internal/domain/model"

	"github.com/shopspring/decimal"
)

type AdminOrderListFilter struct {
	Page       int
	Limit      int
	Status     string
	CustomerID *int64
	From       *time.Time
	To         *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//Tx内で行ロックを取る（SELECT ... FOR UPDATE）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//発送情報とshippedへの更新
	MarkShipped(ctx context.Context, orderID int64, trackingNumber string, shippingMethod string) error

	//本を含む最新の注文（ステータス問わず）
	FindLatestByBookID(ctx context.Context, bookID int64) (model.Order, bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	// status が空なら全件
	Count(ctx context.Context, status model.OrderStatus) (int64, error)
	SumTotal(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error)
}
