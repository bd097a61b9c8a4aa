package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

type OrderItemRepository interface {
	// items の ID / OrderID は埋めて返す
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	// 一覧表示用にまとめて取得。明細の無い注文はキー無し
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
}
