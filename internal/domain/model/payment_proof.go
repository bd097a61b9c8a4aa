package model

import "time"

// 振込明細の画像。1注文につき1件。
type PaymentProof struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64      `gorm:"not null;uniqueIndex" json:"order_id"`
	ProofImageURL       string     `gorm:"type:varchar(255);not null" json:"proof_image_url"`
	SenderAccountNumber string     `gorm:"type:varchar(50)" json:"sender_account_number"`
	UploadedAt          time.Time  `gorm:"not null" json:"uploaded_at"`
	VerifiedAt          *time.Time `json:"verified_at"`
	VerifiedBy          *int64     `json:"verified_by"`
	Notes               string     `gorm:"type:text" json:"notes"`
}

func (p PaymentProof) IsVerified() bool {
	return p.VerifiedAt != nil
}
