package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusBooked    BookStatus = "booked"
	BookStatusSold      BookStatus = "sold"
)

func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusAvailable, BookStatusBooked, BookStatusSold:
		return true
	}
	return false
}

type BookCondition string

const (
	ConditionNew     BookCondition = "new"
	ConditionLikeNew BookCondition = "like_new"
	ConditionGood    BookCondition = "good"
	ConditionFair    BookCondition = "fair"
	ConditionPoor    BookCondition = "poor"
)

func (c BookCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// 中古本。在庫は常に1冊。
type Book struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    int64           `gorm:"not null;index" json:"seller_id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Condition   BookCondition   `gorm:"type:varchar(20);not null" json:"condition"`
	Status      BookStatus      `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (b Book) IsAvailable() bool {
	return b.Status == BookStatusAvailable
}
