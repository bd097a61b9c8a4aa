package usecase

import (
	"context"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentOrderCount = 5

type DashboardUsecase struct {
	users  repo.UserRepository
	books  repo.BookRepository
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	log    *zap.Logger
}

func NewDashboardUsecase(
	users repo.UserRepository,
	books repo.BookRepository,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	log *zap.Logger,
) *DashboardUsecase {
	return &DashboardUsecase{users: users, books: books, orders: orders, items: items, log: log}
}

type DashboardStats struct {
	TotalUsers           int64           `json:"total_users"`
	TotalCustomers       int64           `json:"total_customers"`
	TotalBooks           int64           `json:"total_books"`
	AvailableBooks       int64           `json:"available_books"`
	TotalOrders          int64           `json:"total_orders"`
	PendingPaymentOrders int64           `json:"pending_payment_orders"`
	CompletedOrders      int64           `json:"completed_orders"`
	Revenue              decimal.Decimal `json:"revenue"`
}

type DashboardOutput struct {
	Stats        DashboardStats `json:"stats"`
	RecentOrders []OrderOutput  `json:"recent_orders"`
}

// 売上は completed の注文合計
func (u *DashboardUsecase) Get(ctx context.Context) (DashboardOutput, error) {
	var (
		st  DashboardStats
		err error
	)

	if st.TotalUsers, err = u.users.Count(ctx, ""); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.TotalCustomers, err = u.users.Count(ctx, model.RoleCustomer); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.TotalBooks, err = u.books.Count(ctx, ""); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.AvailableBooks, err = u.books.Count(ctx, model.BookStatusAvailable); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.TotalOrders, err = u.orders.Count(ctx, ""); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.PendingPaymentOrders, err = u.orders.Count(ctx, model.OrderStatusPendingPayment); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.CompletedOrders, err = u.orders.Count(ctx, model.OrderStatusCompleted); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	if st.Revenue, err = u.orders.SumTotal(ctx, model.OrderStatusCompleted); err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}

	recent, _, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: recentOrderCount})
	if err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}
	items, err := u.items.ListByOrderIDs(ctx, orderIDs(recent))
	if err != nil {
		return DashboardOutput{}, internalError(u.log, err, "db error")
	}

	return DashboardOutput{Stats: st, RecentOrders: toOrderOutputs(recent, items)}, nil
}
