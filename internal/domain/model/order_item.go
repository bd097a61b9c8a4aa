package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64           `gorm:"not null;index" json:"order_id"`
	BookID            int64           `gorm:"not null;index" json:"book_id"`
	BookTitleSnapshot string          `gorm:"type:varchar(255);not null" json:"book_title_snapshot"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}
