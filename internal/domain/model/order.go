package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment      OrderStatus = "pending_payment"
	OrderStatusWaitingConfirmation OrderStatus = "waiting_confirmation"
	OrderStatusPaid                OrderStatus = "paid"
	OrderStatusPaymentRejected     OrderStatus = "payment_rejected"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

// 振込期限（注文から24時間）
const PaymentWindow = 24 * time.Hour

// 送料無料のみ
const DefaultShippingMethod = "Free Shipping"

type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64       `gorm:"not null;index" json:"customer_id"`
	OrderDate  time.Time   `gorm:"not null" json:"order_date"`
	Status     OrderStatus `gorm:"type:varchar(30);not null;index" json:"status"`

	//明細合計 + UniqueCode
	Total decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	ShippingName    string          `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingPhone   string          `gorm:"type:varchar(20);not null" json:"shipping_phone"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	ShippingMethod  string          `gorm:"type:varchar(50)" json:"shipping_method"`
	TrackingNumber  string          `gorm:"type:varchar(100)" json:"tracking_number"`
	ShippingCost    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping_cost"`

	//振込照合用の1〜999。作成後は変えない。
	UniqueCode      int       `gorm:"not null" json:"unique_code"`
	PaymentDeadline time.Time `gorm:"not null" json:"payment_deadline"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
