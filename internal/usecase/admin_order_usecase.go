package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx      repo.TransactionManager
	storage ProofStorage
	clock   Clock
	obs     OrderObserver
	log     *zap.Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	storage ProofStorage,
	clock Clock,
	obs OrderObserver,
	log *zap.Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:      tx,
		storage: storage,
		clock:   clock,
		obs:     observerOrNoop(obs),
		log:     log,
	}
}

const (
	VerifyActionApprove = "approve"
	VerifyActionReject  = "reject"
)

type VerifyPaymentInput struct {
	Action string
	Notes  string
}

type ShipOrderInput struct {
	TrackingNumber string
	ShippingMethod string
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	out := OrderListOutput{Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return err
		}
		out.Total = total

		items, err := r.OrderItems().ListByOrderIDs(ctx, orderIDs(orders))
		if err != nil {
			return err
		}
		out.Items = toOrderOutputs(orders, items)
		return nil
	})
	if err != nil {
		return OrderListOutput{}, internalError(u.log, err, "db error")
	}
	return out, nil
}

func (u *AdminOrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}
	return out, nil
}

// 振込の承認/却下。
// 承認: processing にして本は sold に直接書く。
// 却下: payment_rejected にして本は最新注文から決め直す。
// 現在の注文ステータスは見ない。
func (u *AdminOrderUsecase) VerifyPayment(ctx context.Context, adminID int64, orderID int64, in VerifyPaymentInput) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	action := strings.TrimSpace(in.Action)
	if action != VerifyActionApprove && action != VerifyActionReject {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "action must be approve or reject")
	}

	var (
		out       OrderOutput
		newStatus model.OrderStatus
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		_, hasProof, err := r.PaymentProofs().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		now := u.clock.Now()
		before := o.Status

		switch action {
		case VerifyActionApprove:
			if !hasProof {
				return NewHTTPError(http.StatusConflict, "payment proof not found")
			}
			newStatus = model.OrderStatusProcessing
			if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
				return fmt.Errorf("approve order: %w", err)
			}
			if err := r.PaymentProofs().MarkVerified(ctx, orderID, adminID, now, nil); err != nil {
				return fmt.Errorf("stamp proof: %w", err)
			}
			if err := markOrderBooksSold(ctx, r, items, u.obs); err != nil {
				return err
			}

		case VerifyActionReject:
			newStatus = model.OrderStatusPaymentRejected
			if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
				return fmt.Errorf("reject order: %w", err)
			}
			if hasProof {
				notes := strings.TrimSpace(in.Notes)
				if err := r.PaymentProofs().MarkVerified(ctx, orderID, adminID, now, &notes); err != nil {
					return fmt.Errorf("stamp proof: %w", err)
				}
			}
			if err := syncOrderBooks(ctx, r, items, u.obs); err != nil {
				return err
			}
		}

		if err := writeAudit(ctx, r, adminID, model.AuditActionVerifyPayment, model.AuditResourceOrder, orderID,
			map[string]any{"status": before},
			map[string]any{"status": newStatus, "action": action, "notes": strings.TrimSpace(in.Notes)},
			now,
		); err != nil {
			return err
		}

		o.Status = newStatus
		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status == http.StatusConflict {
			u.obs.ObserveConflict("proof_missing")
		}
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}

	u.obs.ObserveTransition(string(newStatus))
	u.log.Info("payment verified",
		zap.Int64("order_id", orderID),
		zap.Int64("admin_id", adminID),
		zap.String("action", action),
	)
	return out, nil
}

// 発送登録（paid / processing のみ）
func (u *AdminOrderUsecase) ShipOrder(ctx context.Context, adminID int64, orderID int64, in ShipOrderInput) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	tracking := strings.TrimSpace(in.TrackingNumber)
	method := strings.TrimSpace(in.ShippingMethod)
	if tracking == "" || method == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "tracking_number and shipping_method are required")
	}
	if len(tracking) > 100 || len(method) > 50 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "tracking_number or shipping_method too long")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanShip() {
			return NewHTTPError(http.StatusConflict, "order cannot be shipped")
		}

		if err := r.Orders().MarkShipped(ctx, orderID, tracking, method); err != nil {
			return fmt.Errorf("ship order: %w", err)
		}

		now := u.clock.Now()
		if err := writeAudit(ctx, r, adminID, model.AuditActionShipOrder, model.AuditResourceOrder, orderID,
			map[string]any{"status": o.Status},
			map[string]any{"status": model.OrderStatusShipped, "tracking_number": tracking, "shipping_method": method},
			now,
		); err != nil {
			return err
		}

		o.Status = model.OrderStatusShipped
		o.TrackingNumber = tracking
		o.ShippingMethod = method
		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}

	u.obs.ObserveTransition(string(model.OrderStatusShipped))
	u.log.Info("order shipped", zap.Int64("order_id", orderID), zap.String("tracking_number", tracking))
	return out, nil
}

// 配達完了（shipped のみ）
func (u *AdminOrderUsecase) CompleteOrder(ctx context.Context, adminID int64, orderID int64) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanComplete() {
			return NewHTTPError(http.StatusConflict, "order cannot be completed")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCompleted); err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		if err := writeAudit(ctx, r, adminID, model.AuditActionCompleteOrder, model.AuditResourceOrder, orderID,
			map[string]any{"status": o.Status},
			map[string]any{"status": model.OrderStatusCompleted},
			u.clock.Now(),
		); err != nil {
			return err
		}

		o.Status = model.OrderStatusCompleted
		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}

	u.obs.ObserveTransition(string(model.OrderStatusCompleted))
	u.log.Info("order completed", zap.Int64("order_id", orderID))
	return out, nil
}

// 管理者によるステータス上書き。遷移チェックはせず、本は最新注文から決め直す。
func (u *AdminOrderUsecase) OverrideOrderStatus(ctx context.Context, adminID int64, orderID int64, status string) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.OrderStatus(strings.TrimSpace(status))
	if !newStatus.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		before := o.Status

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			return fmt.Errorf("override order status: %w", err)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := syncOrderBooks(ctx, r, items, u.obs); err != nil {
			return err
		}

		if err := writeAudit(ctx, r, adminID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]any{"status": before},
			map[string]any{"status": newStatus},
			u.clock.Now(),
		); err != nil {
			return err
		}

		o.Status = newStatus
		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}

	u.obs.ObserveTransition(string(newStatus))
	u.log.Info("order status overridden",
		zap.Int64("order_id", orderID),
		zap.Int64("admin_id", adminID),
		zap.String("status", string(newStatus)),
	)
	return out, nil
}

func findOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	return orderOrNotFound(r.Orders().FindByID(ctx, orderID))
}

// 更新系はここで注文行をロックする（ロック順は order -> book）
func lockOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	return orderOrNotFound(r.Orders().FindByIDForUpdate(ctx, orderID))
}

func orderOrNotFound(o model.Order, err error) (model.Order, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 監査ログ（before/afterはJSON文字列で残す）
func writeAudit(
	ctx context.Context,
	r repo.TxRepos,
	actorID int64,
	action model.AuditAction,
	resource model.AuditResourceType,
	resourceID int64,
	before, after map[string]any,
	at time.Time,
) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return err
	}
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    at,
	}); err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	return nil
}

// 期間パラメータ（RFC3339）。空なら nil。
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
