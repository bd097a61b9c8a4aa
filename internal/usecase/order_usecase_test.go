package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	tx     *TxManagerMock
	users  *UserRepoMock
	books  *BookRepoMock
	orders *OrderRepoMock
	items  *OrderItemRepoMock
	proofs *PaymentProofRepoMock
	uc     *usecase.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		users:  new(UserRepoMock),
		books:  new(BookRepoMock),
		orders: new(OrderRepoMock),
		items:  new(OrderItemRepoMock),
		proofs: new(PaymentProofRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		books:      f.books,
		orders:     f.orders,
		orderItems: f.items,
		proofs:     f.proofs,
	}}
	f.uc = usecase.NewOrderUsecase(f.tx, f.users, new(StorageMock), fixedClock{testNow}, fixedCode(123), nil, zap.NewNop())
	return f
}

func completeCustomer(id int64) model.User {
	return model.User{ID: id, Role: model.RoleCustomer, FullName: "Taro", Phone: "0800", Address: "Tokyo"}
}

func validPlaceInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		BookID:          10,
		Quantity:        1,
		ShippingName:    "Taro",
		ShippingPhone:   "0800",
		ShippingAddress: "Tokyo",
	}
}

func TestOrderUsecase_PlaceOrder_OK(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.users.On("FindByID", mock.Anything, int64(5)).Return(completeCustomer(5), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{
		ID: 10, Title: "Go", Price: decimal.NewFromInt(100000), Status: model.BookStatusAvailable,
	}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.CustomerID == 5 &&
			o.Status == model.OrderStatusPendingPayment &&
			o.UniqueCode == 123 &&
			o.Total.Equal(decimal.NewFromInt(100123)) &&
			o.ShippingCost.IsZero() &&
			o.ShippingMethod == model.DefaultShippingMethod &&
			o.PaymentDeadline.Equal(testNow.Add(model.PaymentWindow))
	})).Return(int64(77), nil)
	f.items.On("CreateBulk", mock.Anything, int64(77), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].BookID == 10 && items[0].BookTitleSnapshot == "Go"
	})).Return(nil)
	f.books.On("UpdateStatus", mock.Anything, int64(10), model.BookStatusBooked).Return(nil)

	out, err := f.uc.PlaceOrder(ctx, 5, validPlaceInput())
	require.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)
	assert.Equal(t, "pending_payment", out.Status)
	assert.Equal(t, "100123", out.Total.String())
	require.Len(t, out.Items, 1)

	f.books.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.items.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_Validation(t *testing.T) {
	f := newOrderFixture()

	in := validPlaceInput()
	in.ShippingName = "   "
	_, err := f.uc.PlaceOrder(context.Background(), 5, in)
	assertErrContains(t, err, "shipping")

	in = validPlaceInput()
	in.Quantity = 0
	_, err = f.uc.PlaceOrder(context.Background(), 5, in)
	assertErrContains(t, err, "quantity")

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderUsecase_PlaceOrder_ProfileIncomplete(t *testing.T) {
	f := newOrderFixture()

	f.users.On("FindByID", mock.Anything, int64(5)).Return(model.User{ID: 5, FullName: "Taro"}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 5, validPlaceInput())
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "profile incomplete", he.Message)

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderUsecase_PlaceOrder_BookNotAvailable(t *testing.T) {
	f := newOrderFixture()

	f.users.On("FindByID", mock.Anything, int64(5)).Return(completeCustomer(5), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{
		ID: 10, Price: decimal.NewFromInt(100000), Status: model.BookStatusBooked,
	}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 5, validPlaceInput())
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "book is no longer available", he.Message)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.books.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_BookNotFound(t *testing.T) {
	f := newOrderFixture()

	f.users.On("FindByID", mock.Anything, int64(5)).Return(completeCustomer(5), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{}, repo.ErrNotFound)

	_, err := f.uc.PlaceOrder(context.Background(), 5, validPlaceInput())
	assertErrContains(t, err, "404")
}

func TestOrderUsecase_PlaceOrder_PersistenceFailure(t *testing.T) {
	f := newOrderFixture()

	f.users.On("FindByID", mock.Anything, int64(5)).Return(completeCustomer(5), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{
		ID: 10, Price: decimal.NewFromInt(100000), Status: model.BookStatusAvailable,
	}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("deadlock detected"))

	_, err := f.uc.PlaceOrder(context.Background(), 5, validPlaceInput())
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Equal(t, "failed to create order", he.Message)

	f.items.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	f.books.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_GetMyOrder_Forbidden(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(3)).Return(model.Order{ID: 3, CustomerID: 99}, nil)

	_, err := f.uc.GetMyOrder(context.Background(), 5, 3)
	assertErrContains(t, err, "forbidden")
}

func TestOrderUsecase_CancelOrder_Forbidden(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{
		ID: 3, CustomerID: 99, Status: model.OrderStatusPendingPayment,
	}, nil)

	_, err := f.uc.CancelOrder(context.Background(), 5, 3)
	assertErrContains(t, err, "forbidden")
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_CancelOrder_TerminalStatesRejected(t *testing.T) {
	for _, st := range []model.OrderStatus{
		model.OrderStatusShipped,
		model.OrderStatusCompleted,
		model.OrderStatusCancelled,
	} {
		t.Run(string(st), func(t *testing.T) {
			f := newOrderFixture()

			f.tx.On("WithinTx", mock.Anything).Return(nil)
			f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, CustomerID: 5, Status: st}, nil)

			_, err := f.uc.CancelOrder(context.Background(), 5, 3)
			assertErrContains(t, err, "order cannot be cancelled")
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			f.books.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderUsecase_CancelOrder_ReleasesBook(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{
		ID: 3, CustomerID: 5, Status: model.OrderStatusPendingPayment,
	}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusCancelled).Return(nil)
	f.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{{ID: 1, OrderID: 3, BookID: 10, Quantity: 1}}, nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{ID: 10, Status: model.BookStatusBooked}, nil)
	f.orders.On("FindLatestByBookID", mock.Anything, int64(10)).Return(model.Order{
		ID: 3, Status: model.OrderStatusCancelled,
	}, true, nil)
	f.books.On("UpdateStatus", mock.Anything, int64(10), model.BookStatusAvailable).Return(nil)

	out, err := f.uc.CancelOrder(context.Background(), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)

	f.books.AssertExpectations(t)
}
