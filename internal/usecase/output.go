package usecase

import (
	"context"
	"time"

	"bookmarket/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	ID       int64           `json:"id"`
	BookID   int64           `json:"book_id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type PaymentProofOutput struct {
	ImageURL            string     `json:"image_url"`
	SenderAccountNumber string     `json:"sender_account_number,omitempty"`
	UploadedAt          time.Time  `json:"uploaded_at"`
	VerifiedAt          *time.Time `json:"verified_at,omitempty"`
	VerifiedBy          *int64     `json:"verified_by,omitempty"`
	Notes               string     `json:"notes,omitempty"`
}

type OrderOutput struct {
	ID              int64               `json:"id"`
	CustomerID      int64               `json:"customer_id"`
	Status          string              `json:"status"`
	OrderDate       time.Time           `json:"order_date"`
	Total           decimal.Decimal     `json:"total"`
	UniqueCode      int                 `json:"unique_code"`
	ShippingName    string              `json:"shipping_name"`
	ShippingPhone   string              `json:"shipping_phone"`
	ShippingAddress string              `json:"shipping_address"`
	ShippingMethod  string              `json:"shipping_method"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	PaymentDeadline time.Time           `json:"payment_deadline"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemOutput   `json:"items"`
	PaymentProof    *PaymentProofOutput `json:"payment_proof,omitempty"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func toOrderOutput(o model.Order, items []model.OrderItem, proof *PaymentProofOutput) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:       it.ID,
			BookID:   it.BookID,
			Title:    it.BookTitleSnapshot,
			Price:    it.Price,
			Quantity: it.Quantity,
			Subtotal: it.Subtotal(),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Status:          string(o.Status),
		OrderDate:       o.OrderDate,
		Total:           o.Total,
		UniqueCode:      o.UniqueCode,
		ShippingName:    o.ShippingName,
		ShippingPhone:   o.ShippingPhone,
		ShippingAddress: o.ShippingAddress,
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    o.ShippingCost,
		TrackingNumber:  o.TrackingNumber,
		PaymentDeadline: o.PaymentDeadline,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
		PaymentProof:    proof,
	}
}

// 一覧用。明細はまとめて引いたものを使う
func toOrderOutputs(orders []model.Order, itemsByOrder map[int64][]model.OrderItem) []OrderOutput {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, itemsByOrder[o.ID], nil))
	}
	return outs
}

func orderIDs(orders []model.Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

// 画像URLはストレージに解決させる（MinIOなら署名URL）
func toPaymentProofOutput(ctx context.Context, storage ProofStorage, p model.PaymentProof) (*PaymentProofOutput, error) {
	url := p.ProofImageURL
	if storage != nil {
		u, err := storage.URL(ctx, p.ProofImageURL)
		if err != nil {
			return nil, err
		}
		url = u
	}
	return &PaymentProofOutput{
		ImageURL:            url,
		SenderAccountNumber: p.SenderAccountNumber,
		UploadedAt:          p.UploadedAt,
		VerifiedAt:          p.VerifiedAt,
		VerifiedBy:          p.VerifiedBy,
		Notes:               p.Notes,
	}, nil
}

type BookOutput struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"seller_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type BookListOutput struct {
	Items []BookOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func toBookOutput(b model.Book) BookOutput {
	return BookOutput{
		ID:          b.ID,
		SellerID:    b.SellerID,
		Title:       b.Title,
		Description: b.Description,
		Price:       b.Price,
		Condition:   string(b.Condition),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
