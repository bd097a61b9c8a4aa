package usecase_test

import (
	"context"
	"testing"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type adminFixture struct {
	tx     *TxManagerMock
	books  *BookRepoMock
	orders *OrderRepoMock
	items  *OrderItemRepoMock
	proofs *PaymentProofRepoMock
	audits *AuditRepoMock
	uc     *usecase.AdminOrderUsecase
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		books:  new(BookRepoMock),
		orders: new(OrderRepoMock),
		items:  new(OrderItemRepoMock),
		proofs: new(PaymentProofRepoMock),
		audits: new(AuditRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		books:      f.books,
		orders:     f.orders,
		orderItems: f.items,
		proofs:     f.proofs,
		audits:     f.audits,
	}}
	f.uc = usecase.NewAdminOrderUsecase(f.tx, new(StorageMock), fixedClock{testNow}, nil, zap.NewNop())
	return f
}

// =====================
// List tests
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	f := newAdminFixture()

	out, err := f.uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(out.Items))
	assertErrContains(t, err, "invalid page")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	f := newAdminFixture()

	_, err := f.uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "PENDING"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_List_OK(t *testing.T) {
	f := newAdminFixture()
	filter := repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "waiting_confirmation"}

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("ListAdmin", mock.Anything, filter).Return([]model.Order{
		{ID: 2, Status: model.OrderStatusWaitingConfirmation},
	}, int64(1), nil)
	f.items.On("ListByOrderIDs", mock.Anything, []int64{2}).Return(map[int64][]model.OrderItem{
		2: {{ID: 1, OrderID: 2, BookID: 10, Quantity: 1}},
	}, nil)

	out, err := f.uc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Items, 1)
	assert.Len(t, out.Items[0].Items, 1)
}

// =====================
// VerifyPayment tests
// =====================

func TestAdminOrderUsecase_VerifyPayment_InvalidAction(t *testing.T) {
	f := newAdminFixture()

	_, err := f.uc.VerifyPayment(context.Background(), 1, 3, usecase.VerifyPaymentInput{Action: "maybe"})
	assertErrContains(t, err, "action must be approve or reject")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_VerifyPayment_ApproveWithoutProof(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusPendingPayment}, nil)
	f.proofs.On("FindByOrderID", mock.Anything, int64(3)).Return(model.PaymentProof{}, false, nil)
	f.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{{BookID: 10}}, nil)

	_, err := f.uc.VerifyPayment(context.Background(), 1, 3, usecase.VerifyPaymentInput{Action: "approve"})
	assertErrContains(t, err, "payment proof not found")
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_VerifyPayment_Approve(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusWaitingConfirmation}, nil)
	f.proofs.On("FindByOrderID", mock.Anything, int64(3)).Return(model.PaymentProof{OrderID: 3, ProofImageURL: "payment-proofs/a.png"}, true, nil)
	f.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{{BookID: 10}}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusProcessing).Return(nil)
	f.proofs.On("MarkVerified", mock.Anything, int64(3), int64(1), testNow, (*string)(nil)).Return(nil)
	f.books.On("UpdateStatus", mock.Anything, int64(10), model.BookStatusSold).Return(nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionVerifyPayment && l.ResourceID == 3 && l.ActorUserID == 1
	})).Return(nil)

	out, err := f.uc.VerifyPayment(context.Background(), 1, 3, usecase.VerifyPaymentInput{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, "processing", out.Status)
	require.NotNil(t, out.PaymentProof)
	assert.Equal(t, "/storage/payment-proofs/a.png", out.PaymentProof.ImageURL)

	//承認では最新注文を見に行かない
	f.orders.AssertNotCalled(t, "FindLatestByBookID", mock.Anything, mock.Anything)
	f.books.AssertExpectations(t)
	f.audits.AssertExpectations(t)
}

func TestAdminOrderUsecase_VerifyPayment_Reject(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusWaitingConfirmation}, nil)
	f.proofs.On("FindByOrderID", mock.Anything, int64(3)).Return(model.PaymentProof{OrderID: 3}, true, nil)
	f.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{{BookID: 10}}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusPaymentRejected).Return(nil)
	f.proofs.On("MarkVerified", mock.Anything, int64(3), int64(1), testNow, mock.MatchedBy(func(n *string) bool {
		return n != nil && *n == "mismatch"
	})).Return(nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{ID: 10, Status: model.BookStatusBooked}, nil)
	f.orders.On("FindLatestByBookID", mock.Anything, int64(10)).Return(model.Order{ID: 3, Status: model.OrderStatusPaymentRejected}, true, nil)
	f.books.On("UpdateStatus", mock.Anything, int64(10), model.BookStatusAvailable).Return(nil)
	f.audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.VerifyPayment(context.Background(), 1, 3, usecase.VerifyPaymentInput{Action: "reject", Notes: " mismatch "})
	require.NoError(t, err)
	assert.Equal(t, "payment_rejected", out.Status)

	f.proofs.AssertExpectations(t)
	f.books.AssertExpectations(t)
}

// =====================
// Ship / Complete / Override tests
// =====================

func TestAdminOrderUsecase_ShipOrder_RequiresFields(t *testing.T) {
	f := newAdminFixture()

	_, err := f.uc.ShipOrder(context.Background(), 1, 3, usecase.ShipOrderInput{TrackingNumber: "JP123"})
	assertErrContains(t, err, "tracking_number and shipping_method are required")
}

func TestAdminOrderUsecase_ShipOrder_WrongState(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusPendingPayment}, nil)

	_, err := f.uc.ShipOrder(context.Background(), 1, 3, usecase.ShipOrderInput{TrackingNumber: "JP123", ShippingMethod: "JNE"})
	assertErrContains(t, err, "order cannot be shipped")
	f.orders.AssertNotCalled(t, "MarkShipped", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_ShipOrder_OK(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusProcessing}, nil)
	f.orders.On("MarkShipped", mock.Anything, int64(3), "JP123", "JNE").Return(nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionShipOrder
	})).Return(nil)
	f.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{}, nil)
	f.proofs.On("FindByOrderID", mock.Anything, int64(3)).Return(model.PaymentProof{}, false, nil)

	out, err := f.uc.ShipOrder(context.Background(), 1, 3, usecase.ShipOrderInput{TrackingNumber: "JP123", ShippingMethod: "JNE"})
	require.NoError(t, err)
	assert.Equal(t, "shipped", out.Status)
	assert.Equal(t, "JP123", out.TrackingNumber)

	//発送では本に触らない
	f.books.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_CompleteOrder_WrongState(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusProcessing}, nil)

	_, err := f.uc.CompleteOrder(context.Background(), 1, 3)
	assertErrContains(t, err, "order cannot be completed")
}

func TestAdminOrderUsecase_OverrideOrderStatus_InvalidStatus(t *testing.T) {
	f := newAdminFixture()

	_, err := f.uc.OverrideOrderStatus(context.Background(), 1, 3, "refunded")
	assertErrContains(t, err, "invalid status")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_OverrideOrderStatus_Recomputes(t *testing.T) {
	f := newAdminFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusCompleted}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusPendingPayment).Return(nil)
	f.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{{BookID: 10}}, nil)
	f.books.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Book{ID: 10, Status: model.BookStatusSold}, nil)
	f.orders.On("FindLatestByBookID", mock.Anything, int64(10)).Return(model.Order{ID: 3, Status: model.OrderStatusPendingPayment}, true, nil)
	f.books.On("UpdateStatus", mock.Anything, int64(10), model.BookStatusBooked).Return(nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.BeforeJSON == `{"status":"completed"}` &&
			l.AfterJSON == `{"status":"pending_payment"}`
	})).Return(nil)
	f.proofs.On("FindByOrderID", mock.Anything, int64(3)).Return(model.PaymentProof{}, false, nil)

	out, err := f.uc.OverrideOrderStatus(context.Background(), 1, 3, "pending_payment")
	require.NoError(t, err)
	assert.Equal(t, "pending_payment", out.Status)

	f.books.AssertExpectations(t)
	f.audits.AssertExpectations(t)
}
