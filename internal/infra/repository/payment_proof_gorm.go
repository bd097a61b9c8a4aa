package repository

import (
	"context"
	"errors"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"gorm.io/gorm"
)

type PaymentProofGormRepository struct {
	db *gorm.DB
}

func NewPaymentProofGormRepository(db *gorm.DB) *PaymentProofGormRepository {
	return &PaymentProofGormRepository{db: db}
}

func (r *PaymentProofGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.PaymentProof, bool, error) {
	var p model.PaymentProof
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentProof{}, false, nil
	}
	if err != nil {
		return model.PaymentProof{}, false, err
	}
	return p, true, nil
}

func (r *PaymentProofGormRepository) Create(ctx context.Context, proof model.PaymentProof) (model.PaymentProof, error) {
	if err := r.db.WithContext(ctx).Create(&proof).Error; err != nil {
		//order_id は unique
		if isUniqueViolation(err) {
			return model.PaymentProof{}, repo.ErrDuplicate
		}
		return model.PaymentProof{}, err
	}
	return proof, nil
}

func (r *PaymentProofGormRepository) MarkVerified(ctx context.Context, orderID int64, verifiedBy int64, verifiedAt time.Time, notes *string) error {
	updates := map[string]interface{}{
		"verified_at": verifiedAt,
		"verified_by": verifiedBy,
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	res := r.db.WithContext(ctx).Model(&model.PaymentProof{}).
		Where("order_id = ?", orderID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
