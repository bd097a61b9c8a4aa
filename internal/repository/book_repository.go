package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

// 一覧検索
type BookListQuery struct {
	Page      int
	Limit     int
	Q         string
	Status    model.BookStatus
	Condition model.BookCondition
	SellerID  *int64
}

// 本の永続化（保存・取得）だけを約束。
type BookRepository interface {
	List(ctx context.Context, q BookListQuery) ([]model.Book, int64, error)
	FindByID(ctx context.Context, id int64) (model.Book, error)

	// 行ロック付き取得（SELECT ... FOR UPDATE）。Tx内でのみ使う。
	FindByIDForUpdate(ctx context.Context, id int64) (model.Book, error)

	Create(ctx context.Context, b model.Book) (model.Book, error)
	Update(ctx context.Context, b model.Book) error
	UpdateStatus(ctx context.Context, id int64, status model.BookStatus) error
	Delete(ctx context.Context, id int64) error

	// 注文明細から参照されているか
	IsReferenced(ctx context.Context, id int64) (bool, error)

	// status が空なら全件
	Count(ctx context.Context, status model.BookStatus) (int64, error)
}
