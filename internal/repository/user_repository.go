package repository

import (
	"context"

	"bookmarket/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	FindByID(ctx context.Context, userID int64) (model.User, error)
	//見つからなければ ErrNotFound
	FindByEmail(ctx context.Context, email string) (model.User, error)
	UpdateProfile(ctx context.Context, userID int64, fullName, phone, address string) error
	// role が空なら全件
	Count(ctx context.Context, role model.Role) (int64, error)
}
