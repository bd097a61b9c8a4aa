package repository

import (
	"context"
	"time"

	"bookmarket/internal/domain/model"
)

type PaymentProofRepository interface {
	FindByOrderID(ctx context.Context, orderID int64) (model.PaymentProof, bool, error)
	Create(ctx context.Context, proof model.PaymentProof) (model.PaymentProof, error)

	// notes が nil なら既存の notes は触らない
	MarkVerified(ctx context.Context, orderID int64, verifiedBy int64, verifiedAt time.Time, notes *string) error
}
