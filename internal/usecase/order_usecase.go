package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	users   repo.UserRepository
	storage ProofStorage
	clock   Clock
	codes   CodeGenerator
	obs     OrderObserver
	log     *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	storage ProofStorage,
	clock Clock,
	codes CodeGenerator,
	obs OrderObserver,
	log *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:      tx,
		users:   users,
		storage: storage,
		clock:   clock,
		codes:   codes,
		obs:     observerOrNoop(obs),
		log:     log,
	}
}

type PlaceOrderInput struct {
	BookID          int64
	Quantity        int64
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
}

// 1冊の本を注文する。
// 本の行をロックしてから available を確認するので、同じ本への同時注文は1件しか通らない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, customerID int64, in PlaceOrderInput) (OrderOutput, error) {
	if customerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.BookID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid book_id")
	}
	if in.Quantity < 1 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}
	in.ShippingName = strings.TrimSpace(in.ShippingName)
	in.ShippingPhone = strings.TrimSpace(in.ShippingPhone)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if in.ShippingName == "" || in.ShippingPhone == "" || in.ShippingAddress == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping name, phone and address are required")
	}

	//プロフィール未入力なら注文させない
	user, err := u.users.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("customer_id", customerID))
	}
	if !user.HasCompleteProfile() {
		u.obs.ObserveConflict("profile_incomplete")
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "profile incomplete")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//SELECT ... FOR UPDATE
		book, err := r.Books().FindByIDForUpdate(ctx, in.BookID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "book not found")
		}
		if err != nil {
			return fmt.Errorf("lock book: %w", err)
		}
		if !book.IsAvailable() {
			return NewHTTPError(http.StatusConflict, "book is no longer available")
		}

		now := u.clock.Now()
		code := u.codes.Next()
		total := book.Price.Mul(decimal.NewFromInt(in.Quantity)).Add(decimal.NewFromInt(int64(code)))

		order := model.Order{
			CustomerID:      customerID,
			OrderDate:       now,
			Status:          model.OrderStatusPendingPayment,
			Total:           total,
			ShippingName:    in.ShippingName,
			ShippingPhone:   in.ShippingPhone,
			ShippingAddress: in.ShippingAddress,
			ShippingMethod:  model.DefaultShippingMethod,
			ShippingCost:    decimal.Zero,
			UniqueCode:      code,
			PaymentDeadline: now.Add(model.PaymentWindow),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.ID = orderID

		items := []model.OrderItem{{
			BookID:            book.ID,
			BookTitleSnapshot: book.Title,
			Quantity:          in.Quantity,
			Price:             book.Price,
			CreatedAt:         now,
		}}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		if err := r.Books().UpdateStatus(ctx, book.ID, model.BookStatusBooked); err != nil {
			return fmt.Errorf("book booked: %w", err)
		}

		out = toOrderOutput(order, items, nil)
		return nil
	})

	if err != nil {
		if he, ok := AsHTTPError(err); ok {
			if he.Status == http.StatusConflict {
				u.obs.ObserveConflict("book_unavailable")
			}
			return OrderOutput{}, err
		}
		return OrderOutput{}, internalError(u.log, err, "failed to create order",
			zap.Int64("customer_id", customerID), zap.Int64("book_id", in.BookID))
	}

	u.obs.ObservePlaced(out.Total.InexactFloat64())
	u.obs.ObserveBookStatus(string(model.BookStatusBooked))
	u.log.Info("order placed",
		zap.Int64("order_id", out.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("book_id", in.BookID),
		zap.String("total", out.Total.StringFixed(2)),
	)
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, customerID int64, page, limit int) (OrderListOutput, error) {
	if customerID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	out := OrderListOutput{Page: page, Limit: limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByCustomerID(ctx, customerID, page, limit)
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
		return OrderListOutput{}, internalError(u.log, err, "db error", zap.Int64("customer_id", customerID))
	}
	return out, nil
}

// 他人の注文は403
func (u *OrderUsecase) GetMyOrder(ctx context.Context, customerID int64, orderID int64) (OrderOutput, error) {
	if customerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if o.CustomerID != customerID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		out, err = loadOrderOutput(ctx, r, u.storage, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}
	return out, nil
}

// 購入者によるキャンセル。発送後・完了・キャンセル済みは不可。
func (u *OrderUsecase) CancelOrder(ctx context.Context, customerID int64, orderID int64) (OrderOutput, error) {
	if customerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if o.CustomerID != customerID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if !o.Status.CustomerCancellable() {
			return NewHTTPError(http.StatusConflict, "order cannot be cancelled")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		o.Status = model.OrderStatusCancelled

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := syncOrderBooks(ctx, r, items, u.obs); err != nil {
			return err
		}

		out = toOrderOutput(o, items, nil)
		return nil
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status == http.StatusConflict {
			u.obs.ObserveConflict("not_cancellable")
		}
		return OrderOutput{}, internalError(u.log, err, "db error", zap.Int64("order_id", orderID))
	}

	u.obs.ObserveTransition(string(model.OrderStatusCancelled))
	u.log.Info("order cancelled", zap.Int64("order_id", orderID), zap.Int64("customer_id", customerID))
	return out, nil
}

// 明細と振込明細を付けて返す
func loadOrderOutput(ctx context.Context, r repo.TxRepos, storage ProofStorage, o model.Order) (OrderOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}

	var proofOut *PaymentProofOutput
	proof, found, err := r.PaymentProofs().FindByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	if found {
		proofOut, err = toPaymentProofOutput(ctx, storage, proof)
		if err != nil {
			return OrderOutput{}, err
		}
	}
	return toOrderOutput(o, items, proofOut), nil
}
