package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"go.uber.org/zap"
)

// 振込明細画像の上限（2MB）
const MaxProofSize = 2 << 20

const proofKeyPrefix = "payment-proofs/"

// 受け付ける画像形式と保存時の拡張子
var proofImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type PaymentProofUsecase struct {
	tx      repo.TransactionManager
	storage ProofStorage
	ids     IDGenerator
	clock   Clock
	obs     OrderObserver
	log     *zap.Logger
}

func NewPaymentProofUsecase(
	tx repo.TransactionManager,
	storage ProofStorage,
	ids IDGenerator,
	clock Clock,
	obs OrderObserver,
	log *zap.Logger,
) *PaymentProofUsecase {
	return &PaymentProofUsecase{
		tx:      tx,
		storage: storage,
		ids:     ids,
		clock:   clock,
		obs:     observerOrNoop(obs),
		log:     log,
	}
}

type UploadPaymentProofInput struct {
	Filename            string
	Data                []byte
	SenderAccountNumber string
}

// 振込明細をアップロードして waiting_confirmation にする。
// 画像を先に保存し、DB更新に失敗したら画像を消す。
func (u *PaymentProofUsecase) Upload(ctx context.Context, customerID int64, orderID int64, in UploadPaymentProofInput) (OrderOutput, error) {
	if customerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if len(in.Data) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "proof_image required")
	}
	if len(in.Data) > MaxProofSize {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "proof_image must be 2MB or smaller")
	}
	//拡張子ではなく中身で判定
	contentType := http.DetectContentType(in.Data)
	ext, ok := proofImageTypes[contentType]
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "proof_image must be jpeg, png, gif or webp")
	}
	sender := strings.TrimSpace(in.SenderAccountNumber)
	if len(sender) > 50 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "sender_account_number too long")
	}

	//保存前に状態を確認（無駄なアップロードを避ける）
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := checkProofUploadable(ctx, r, customerID, orderID)
		return err
	})
	if err != nil {
		return OrderOutput{}, u.wrap(err, orderID)
	}

	key := proofKeyPrefix + u.ids.NewString() + ext
	if err := u.storage.Put(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), contentType); err != nil {
		return OrderOutput{}, internalError(u.log, err, "failed to store payment proof", zap.Int64("order_id", orderID))
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//並行アップロードに備えてTx内でもう一度確認
		o, err := checkProofUploadable(ctx, r, customerID, orderID)
		if err != nil {
			return err
		}

		if _, err := r.PaymentProofs().Create(ctx, model.PaymentProof{
			OrderID:             orderID,
			ProofImageURL:       key,
			SenderAccountNumber: sender,
			UploadedAt:          u.clock.Now(),
		}); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewHTTPError(http.StatusConflict, "payment proof already uploaded")
			}
			return fmt.Errorf("create payment proof: %w", err)
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusWaitingConfirmation); err != nil {
			return fmt.Errorf("order waiting_confirmation: %w", err)
		}
		o.Status = model.OrderStatusWaitingConfirmation

		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		if delErr := u.storage.Delete(ctx, key); delErr != nil {
			u.log.Warn("failed to remove orphan payment proof", zap.String("key", key), zap.Error(delErr))
		}
		return OrderOutput{}, u.wrap(err, orderID)
	}

	u.obs.ObserveTransition(string(model.OrderStatusWaitingConfirmation))
	u.log.Info("payment proof uploaded", zap.Int64("order_id", orderID), zap.String("key", key))
	return out, nil
}

func (u *PaymentProofUsecase) wrap(err error, orderID int64) error {
	if he, ok := AsHTTPError(err); ok && he.Status == http.StatusConflict {
		u.obs.ObserveConflict("proof_rejected")
	}
	return internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
}

// 本人の注文で、pending_payment で、まだ明細が無いこと
func checkProofUploadable(ctx context.Context, r repo.TxRepos, customerID, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, err
	}
	if o.CustomerID != customerID {
		return model.Order{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	_, exists, err := r.PaymentProofs().FindByOrderID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if exists {
		return model.Order{}, NewHTTPError(http.StatusConflict, "payment proof already uploaded")
	}
	if !o.Status.CanUploadProof() {
		return model.Order{}, NewHTTPError(http.StatusConflict, "order is not awaiting payment")
	}
	return o, nil
}
