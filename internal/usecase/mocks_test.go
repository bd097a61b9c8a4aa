package usecase_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	books      repo.BookRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	proofs     repo.PaymentProofRepository
	audits     repo.AuditLogRepository
}

func (r *TxReposMock) Books() repo.BookRepository                 { return r.books }
func (r *TxReposMock) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *TxReposMock) PaymentProofs() repo.PaymentProofRepository { return r.proofs }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository         { return r.audits }

// =====================
// Repository mocks
// =====================

type BookRepoMock struct{ mock.Mock }

func (m *BookRepoMock) List(ctx context.Context, q repo.BookListQuery) ([]model.Book, int64, error) {
	args := m.Called(ctx, q)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Get(1).(int64), args.Error(2)
}

func (m *BookRepoMock) FindByID(ctx context.Context, id int64) (model.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) Create(ctx context.Context, b model.Book) (model.Book, error) {
	args := m.Called(ctx, b)
	out, _ := args.Get(0).(model.Book)
	return out, args.Error(1)
}

func (m *BookRepoMock) Update(ctx context.Context, b model.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookRepoMock) UpdateStatus(ctx context.Context, id int64, status model.BookStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *BookRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookRepoMock) IsReferenced(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *BookRepoMock) Count(ctx context.Context, status model.BookStatus) (int64, error) {
	panic("not used in usecase mock tests")
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in usecase mock tests")
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkShipped(ctx context.Context, orderID int64, trackingNumber string, shippingMethod string) error {
	args := m.Called(ctx, orderID, trackingNumber, shippingMethod)
	return args.Error(0)
}

func (m *OrderRepoMock) FindLatestByBookID(ctx context.Context, bookID int64) (model.Order, bool, error) {
	args := m.Called(ctx, bookID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Count(ctx context.Context, status model.OrderStatus) (int64, error) {
	panic("not used in usecase mock tests")
}

func (m *OrderRepoMock) SumTotal(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	panic("not used in usecase mock tests")
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).(map[int64][]model.OrderItem)
	return items, args.Error(1)
}

type PaymentProofRepoMock struct{ mock.Mock }

func (m *PaymentProofRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.PaymentProof, bool, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.PaymentProof)
	return p, args.Bool(1), args.Error(2)
}

func (m *PaymentProofRepoMock) Create(ctx context.Context, proof model.PaymentProof) (model.PaymentProof, error) {
	args := m.Called(ctx, proof)
	p, _ := args.Get(0).(model.PaymentProof)
	return p, args.Error(1)
}

func (m *PaymentProofRepoMock) MarkVerified(ctx context.Context, orderID int64, verifiedBy int64, verifiedAt time.Time, notes *string) error {
	args := m.Called(ctx, orderID, verifiedBy, verifiedAt, notes)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateProfile(ctx context.Context, userID int64, fullName, phone, address string) error {
	args := m.Called(ctx, userID, fullName, phone, address)
	return args.Error(0)
}

func (m *UserRepoMock) Count(ctx context.Context, role model.Role) (int64, error) {
	panic("not used in usecase mock tests")
}

type StorageMock struct{ mock.Mock }

func (m *StorageMock) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, size, contentType)
	return args.Error(0)
}

func (m *StorageMock) URL(ctx context.Context, key string) (string, error) {
	return "/storage/" + key, nil
}

func (m *StorageMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// =====================
// 固定値
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedCode int

func (c fixedCode) Next() int { return int(c) }

type fixedID string

func (s fixedID) NewString() string { return string(s) }

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
